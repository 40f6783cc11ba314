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

package events

import (
	"context"

	"code.helixprotocol.io/helix/core/types"
)

// PriceUpdate is emitted every time a new aggregated price is accepted
// for an asset.
type PriceUpdate struct {
	*Base
	price *types.AggregatedPrice
}

func NewPriceUpdate(ctx context.Context, price *types.AggregatedPrice) *PriceUpdate {
	return &PriceUpdate{
		Base:  newBase(ctx, PriceUpdateEvent),
		price: price.DeepClone(),
	}
}

func (p PriceUpdate) AggregatedPrice() *types.AggregatedPrice {
	return p.price.DeepClone()
}

// CircuitBreaker is emitted when the deviation circuit breaker for an
// asset trips or resets.
type CircuitBreaker struct {
	*Base
	asset     string
	triggered bool
}

func NewCircuitBreaker(ctx context.Context, asset string, triggered bool) *CircuitBreaker {
	return &CircuitBreaker{
		Base:      newBase(ctx, CircuitBreakerEvent),
		asset:     asset,
		triggered: triggered,
	}
}

func (c CircuitBreaker) Asset() string {
	return c.asset
}

func (c CircuitBreaker) Triggered() bool {
	return c.triggered
}

// Provider is emitted on oracle registry changes (registration,
// deactivation, reliability updates).
type Provider struct {
	*Base
	provider *types.OracleProvider
}

func NewProvider(ctx context.Context, provider *types.OracleProvider) *Provider {
	return &Provider{
		Base:     newBase(ctx, ProviderEvent),
		provider: provider.DeepClone(),
	}
}

func (p Provider) Provider() *types.OracleProvider {
	return p.provider.DeepClone()
}
