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
	"time"

	"code.helixprotocol.io/helix/core/types"
	"code.helixprotocol.io/helix/libs/num"
)

// history is a fixed-capacity ring of price points. The retention bound
// is a hard requirement, unbounded growth is an explicit non-goal.
type history struct {
	points []*types.PriceHistoryPoint
	start  int
	size   int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = 1
	}
	return &history{
		points: make([]*types.PriceHistoryPoint, capacity),
	}
}

// add appends a point, evicting the oldest when full.
func (h *history) add(p *types.PriceHistoryPoint) {
	idx := (h.start + h.size) % len(h.points)
	if h.size == len(h.points) {
		h.start = (h.start + 1) % len(h.points)
		h.size--
	}
	h.points[idx] = p
	h.size++
}

func (h *history) len() int {
	return h.size
}

// at returns the i-th point in chronological order.
func (h *history) at(i int) *types.PriceHistoryPoint {
	return h.points[(h.start+i)%len(h.points)]
}

func (h *history) oldest() *types.PriceHistoryPoint {
	if h.size == 0 {
		return nil
	}
	return h.at(0)
}

func (h *history) newest() *types.PriceHistoryPoint {
	if h.size == 0 {
		return nil
	}
	return h.at(h.size - 1)
}

// priceAtOrBefore returns the last recorded price with a time not after
// t, nil when t predates the retained history.
func (h *history) priceAtOrBefore(t time.Time) *num.Uint {
	var found *num.Uint
	for i := 0; i < h.size; i++ {
		p := h.at(i)
		if p.Time.After(t) {
			break
		}
		found = p.Price
	}
	if found == nil {
		return nil
	}
	return found.Clone()
}

// interpolate returns the linearly interpolated price at time t, which
// must lie between the oldest and newest retained points.
func (h *history) interpolate(t time.Time) num.Decimal {
	var before, after *types.PriceHistoryPoint
	for i := 0; i < h.size; i++ {
		p := h.at(i)
		if !p.Time.After(t) {
			before = p
			continue
		}
		after = p
		break
	}
	if before == nil {
		return after.Price.ToDecimal()
	}
	if after == nil || before.Time.Equal(t) {
		return before.Price.ToDecimal()
	}
	span := after.Time.Sub(before.Time)
	if span <= 0 {
		return before.Price.ToDecimal()
	}
	elapsed := t.Sub(before.Time)
	frac := num.DecimalFromInt64(elapsed.Nanoseconds()).Div(num.DecimalFromInt64(span.Nanoseconds()))
	bp, ap := before.Price.ToDecimal(), after.Price.ToDecimal()
	return bp.Add(ap.Sub(bp).Mul(frac))
}

// twap integrates the piecewise-linear price over [from, to] and returns
// the time-weighted average. The price after the newest point is held
// constant at its value.
func (h *history) twap(from, to time.Time) num.Decimal {
	if !to.After(from) {
		return h.interpolate(from)
	}

	// collect the integration knots: window start, all points strictly
	// inside the window, window end
	ts := []time.Time{from}
	for i := 0; i < h.size; i++ {
		p := h.at(i)
		if p.Time.After(from) && p.Time.Before(to) {
			ts = append(ts, p.Time)
		}
	}
	ts = append(ts, to)

	total := num.DecimalZero()
	for i := 0; i+1 < len(ts); i++ {
		dt := num.DecimalFromInt64(ts[i+1].Sub(ts[i]).Nanoseconds())
		avg := h.priceAt(ts[i]).Add(h.priceAt(ts[i+1])).Div(num.DecimalFromInt64(2))
		total = total.Add(avg.Mul(dt))
	}
	window := num.DecimalFromInt64(to.Sub(from).Nanoseconds())
	return total.Div(window)
}

// priceAt is interpolate with the flat extension past the newest point.
func (h *history) priceAt(t time.Time) num.Decimal {
	newest := h.newest()
	if newest != nil && t.After(newest.Time) {
		return newest.Price.ToDecimal()
	}
	return h.interpolate(t)
}
