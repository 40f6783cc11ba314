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

package config

import (
	"bytes"
	"os"
	"path/filepath"

	"code.helixprotocol.io/helix/core/assets"
	"code.helixprotocol.io/helix/core/collateral"
	"code.helixprotocol.io/helix/core/liquidation"
	"code.helixprotocol.io/helix/core/oracle"
	"code.helixprotocol.io/helix/core/pricing"
	"code.helixprotocol.io/helix/logging"
	"code.helixprotocol.io/helix/metrics"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ConfigFileName is the name of the node configuration file.
const ConfigFileName = "config.toml"

// Config is the root configuration aggregating every engine's section.
type Config struct {
	// Controller is the party holding the privileged governance
	// capability at genesis.
	Controller string `long:"controller"`

	Logging     logging.Config     `group:"Logging" namespace:"logging"`
	Oracle      oracle.Config      `group:"Oracle" namespace:"oracle"`
	Pricing     pricing.Config     `group:"Pricing" namespace:"pricing"`
	Assets      assets.Config      `group:"Assets" namespace:"assets"`
	Collateral  collateral.Config  `group:"Collateral" namespace:"collateral"`
	Liquidation liquidation.Config `group:"Liquidation" namespace:"liquidation"`
	Metrics     metrics.Config     `group:"Metrics" namespace:"metrics"`
}

// NewDefaultConfig returns a fully defaulted configuration.
func NewDefaultConfig() Config {
	return Config{
		Controller:  "controller",
		Logging:     logging.NewDefaultConfig(),
		Oracle:      oracle.NewDefaultConfig(),
		Pricing:     pricing.NewDefaultConfig(),
		Assets:      assets.NewDefaultConfig(),
		Collateral:  collateral.NewDefaultConfig(),
		Liquidation: liquidation.NewDefaultConfig(),
		Metrics:     metrics.NewDefaultConfig(),
	}
}

// Read loads the configuration file from the given home directory.
func Read(home string) (*Config, error) {
	cfg := NewDefaultConfig()
	path := filepath.Join(home, ConfigFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read configuration at %s", path)
	}
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse configuration at %s", path)
	}
	return &cfg, nil
}

// Write serialises the configuration into the given home directory,
// creating it if needed.
func Write(home string, cfg Config) error {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return errors.Wrapf(err, "couldn't create configuration directory %s", home)
	}
	buf := bytes.Buffer{}
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "couldn't serialise configuration")
	}
	path := filepath.Join(home, ConfigFileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return errors.Wrapf(err, "couldn't write configuration at %s", path)
	}
	return nil
}
