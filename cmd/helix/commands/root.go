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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "helix",
	Short:         "Helix synthetic asset settlement core",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var homeFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", defaultHome(), "directory holding the node configuration")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(startCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".helix"
	}
	return filepath.Join(home, ".helix")
}
