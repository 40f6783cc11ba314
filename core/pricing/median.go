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

package pricing

import (
	"sort"

	"code.helixprotocol.io/helix/libs/num"
)

type medianEntry struct {
	price      *num.Uint
	weight     uint64 // reliability x confidence, both in basis points
	confidence uint64
	sequence   uint64 // provider registration order, the deterministic tie-break
}

// weightedMedian returns the weighted median price of the entries and
// the weight-averaged confidence. A median resists a single outlier
// skewing the result the way a mean would. Entries are ordered by price
// ascending with ties broken by provider registration order, and the
// lowest price whose cumulative weight reaches half the total wins,
// which keeps the result reproducible across identical submission sets.
func weightedMedian(entries []medianEntry) (*num.Uint, uint64) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].price.EQ(entries[j].price) {
			return entries[i].sequence < entries[j].sequence
		}
		return entries[i].price.LT(entries[j].price)
	})

	var total, confWeighted uint64
	for _, en := range entries {
		total += en.weight
		confWeighted += en.weight * en.confidence
	}

	var cumulative uint64
	for _, en := range entries {
		cumulative += en.weight
		if 2*cumulative >= total {
			return en.price.Clone(), confWeighted / total
		}
	}
	// unreachable with a non-empty entry set
	last := entries[len(entries)-1]
	return last.price.Clone(), confWeighted / total
}
