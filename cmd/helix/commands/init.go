// Copyright (C) 2024 Helix Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"code.helixprotocol.io/helix/config"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration to the home directory",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing configuration")
}

func runInit(_ *cobra.Command, _ []string) error {
	path := filepath.Join(homeFlag, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !initForce {
		return errors.Errorf("configuration already exists at %s, use --force to overwrite", path)
	}
	if err := config.Write(homeFlag, config.NewDefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("configuration written to %s\n", path)
	return nil
}
