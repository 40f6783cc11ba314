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

package types

import "code.helixprotocol.io/helix/libs/num"

// AssetParams are the risk parameters of a synthetic asset, owned by the
// asset registry and read by the collateral ledger and liquidation engine
// on every ratio computation.
type AssetParams struct {
	Symbol                string
	MinCollateralRatio    uint64 // basis points, e.g. 15000 = 150%
	LiquidationThreshold  uint64 // basis points, < MinCollateralRatio
	FundingRateMultiplier num.Decimal
	IsInverse             bool
	MaxSupply             *num.Uint
	Active                bool
}

func (a AssetParams) DeepClone() *AssetParams {
	cpy := a
	cpy.MaxSupply = a.MaxSupply.Clone()
	return &cpy
}
