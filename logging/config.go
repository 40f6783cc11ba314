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

package logging

// Config contains the root logger configuration.
type Config struct {
	// Environment selects the encoder preset, "dev" or "production".
	Environment string `long:"environment"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Environment: "dev",
	}
}

// NewLogger builds the root logger for the given configuration.
func NewLogger(cfg Config) *Logger {
	if cfg.Environment == "production" {
		return NewProdLogger()
	}
	return NewDevLogger()
}
