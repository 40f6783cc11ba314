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
)

// Type is the type of an event emitted by the core engines.
type Type int

const (
	PriceUpdateEvent Type = iota
	CircuitBreakerEvent
	PositionStateEvent
	LiquidationEvent
	LedgerMovementEvent
	ProviderEvent
)

func (t Type) String() string {
	switch t {
	case PriceUpdateEvent:
		return "PriceUpdateEvent"
	case CircuitBreakerEvent:
		return "CircuitBreakerEvent"
	case PositionStateEvent:
		return "PositionStateEvent"
	case LiquidationEvent:
		return "LiquidationEvent"
	case LedgerMovementEvent:
		return "LedgerMovementEvent"
	case ProviderEvent:
		return "ProviderEvent"
	default:
		return "UnknownEvent"
	}
}

// Event is the interface that must be implemented by all events sent
// through the broker.
type Event interface {
	Type() Type
	Context() context.Context
}

// Base is embedded by all event types, it carries what is common to
// every event.
type Base struct {
	ctx context.Context
	et  Type
}

func newBase(ctx context.Context, t Type) *Base {
	return &Base{
		ctx: ctx,
		et:  t,
	}
}

// Context returns the context the event was created with.
func (b Base) Context() context.Context {
	return b.ctx
}

// Type returns the type of the event.
func (b Base) Type() Type {
	return b.et
}
