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

package broker

import (
	"code.helixprotocol.io/helix/core/events"
	"code.helixprotocol.io/helix/logging"
)

const namedLogger = "broker"

// Interface is the event-sending side of the broker, engines depend on
// this rather than the concrete type.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/broker_mock.go -package mocks code.helixprotocol.io/helix/core/broker Interface
type Interface interface {
	Send(event events.Event)
	SendBatch(events []events.Event)
}

// Subscriber receives events from the broker.
type Subscriber interface {
	Push(events.Event)
}

// SubscriptionID is a unique identifier referencing the subscription of
// a Subscriber to the broker.
type SubscriptionID uint64

// Broker fans events out to the registered subscribers. Delivery is
// synchronous and in subscription order: the sequential execution model
// of the core forbids asynchronous fan-out that could reorder events.
type Broker struct {
	log *logging.Logger

	lastID SubscriptionID
	subs   []subscription
}

type subscription struct {
	id  SubscriptionID
	sub Subscriber
}

// New instantiates a new broker.
func New(log *logging.Logger) *Broker {
	log = log.Named(namedLogger)
	return &Broker{
		log:  log,
		subs: []subscription{},
	}
}

// Subscribe registers a new subscriber and returns the ID to
// unsubscribe with.
func (b *Broker) Subscribe(s Subscriber) SubscriptionID {
	b.lastID++
	b.subs = append(b.subs, subscription{id: b.lastID, sub: s})
	return b.lastID
}

// Unsubscribe removes a subscriber. Unsubscribing twice is a no-op.
func (b *Broker) Unsubscribe(id SubscriptionID) {
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Send delivers the event to all subscribers.
func (b *Broker) Send(event events.Event) {
	if b.log.IsDebug() {
		b.log.Debug("sending event", logging.Stringer("type", event.Type()))
	}
	for _, s := range b.subs {
		s.sub.Push(event)
	}
}

// SendBatch delivers all events, in order, to all subscribers.
func (b *Broker) SendBatch(evts []events.Event) {
	for _, e := range evts {
		b.Send(e)
	}
}
