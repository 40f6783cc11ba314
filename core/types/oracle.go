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

import (
	"time"

	"code.helixprotocol.io/helix/libs/num"
)

// BasisPoints is the denominator used for all fractional protocol
// parameters (reliability weights, confidence, collateral factors,
// ratio thresholds).
const BasisPoints uint64 = 10000

// BpsToDecimal converts a basis-point parameter into its fractional
// decimal representation, e.g. 500 -> 0.05.
func BpsToDecimal(bps uint64) num.Decimal {
	return num.DecimalFromInt64(int64(bps)).Div(num.DecimalFromInt64(int64(BasisPoints)))
}

// OracleProvider is the registry record for a single data provider.
// Providers are deactivated rather than deleted so their submission
// history stays auditable.
type OracleProvider struct {
	ID             string
	Name           string
	Reliability    uint64 // basis points, 0-10000
	Active         bool
	Sequence       uint64 // registration order, ties in the median break on it
	LastSubmission time.Time
}

func (p OracleProvider) DeepClone() *OracleProvider {
	return &p
}

// PriceSubmission is a single provider's reported price for an asset.
// Submissions are never mutated, a newer one replaces the previous one
// for the same provider/asset pair.
type PriceSubmission struct {
	Provider   string
	Asset      string
	Price      *num.Uint // fixed point, 1e18 scale
	Confidence uint64    // basis points
	Time       time.Time
}

func (s PriceSubmission) DeepClone() *PriceSubmission {
	cpy := s
	cpy.Price = s.Price.Clone()
	return &cpy
}

// AggregatedPrice is the protocol's single trusted price for an asset,
// derived from the active providers' fresh submissions.
type AggregatedPrice struct {
	Asset         string
	Price         *num.Uint
	Time          time.Time
	Confidence    uint64
	ProviderCount int
}

func (a AggregatedPrice) DeepClone() *AggregatedPrice {
	cpy := a
	cpy.Price = a.Price.Clone()
	return &cpy
}

// PriceHistoryPoint is one entry of the bounded per-asset price history
// backing TWAP queries and circuit-breaker comparisons.
type PriceHistoryPoint struct {
	Time     time.Time
	Price    *num.Uint
	Volume24 *num.Uint   // rolling 24h traded volume reported by the trading engine
	Change24 num.Decimal // 24h relative change, fraction
}

func (p PriceHistoryPoint) DeepClone() *PriceHistoryPoint {
	cpy := p
	cpy.Price = p.Price.Clone()
	cpy.Volume24 = p.Volume24.Clone()
	return &cpy
}
