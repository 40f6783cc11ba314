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

package liquidation

import (
	"code.helixprotocol.io/helix/libs/config/encoding"
	"code.helixprotocol.io/helix/logging"
)

const namedLogger = "liquidation"

// Config is the configuration of the liquidation engine.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`
	// Penalty is the surcharge on seized collateral, basis points.
	Penalty uint64 `long:"penalty"`
	// InsuranceShare is the slice of the penalty credited to the
	// insurance fund, basis points. The remainder goes to the liquidator.
	InsuranceShare uint64 `long:"insurance-share"`
	// MinViableCollateral is the smallest collateral balance a position
	// may be left with after a partial liquidation. Partials that would
	// leave less close the position entirely.
	MinViableCollateral uint64 `long:"min-viable-collateral"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:               encoding.LogLevel{Level: logging.InfoLevel},
		Penalty:             1000,
		InsuranceShare:      4000,
		MinViableCollateral: 100,
	}
}
