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
	"context"
	"errors"
	"time"

	"code.helixprotocol.io/helix/core/broker"
	"code.helixprotocol.io/helix/core/events"
	"code.helixprotocol.io/helix/core/roles"
	"code.helixprotocol.io/helix/core/types"
	"code.helixprotocol.io/helix/libs/num"
	"code.helixprotocol.io/helix/logging"
	"code.helixprotocol.io/helix/metrics"
)

var (
	// ErrStalePrice is returned when a submission's observation time is
	// older than the heartbeat window.
	ErrStalePrice = errors.New("stale price submission")
	// ErrInsufficientProviders is returned when fewer than the quorum of
	// active providers have fresh data for an asset.
	ErrInsufficientProviders = errors.New("insufficient providers with fresh data")
	// ErrPriceFrozen is returned when the circuit breaker for the asset
	// is triggered.
	ErrPriceFrozen = errors.New("price is frozen by the circuit breaker")
	// ErrInsufficientHistory is returned when a TWAP period exceeds the
	// retained history depth.
	ErrInsufficientHistory = errors.New("insufficient price history for requested period")
	// ErrUnknownAsset is returned when no submission was ever accepted
	// for the asset.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrInvalidPrice is returned on a nil or zero submitted price.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidConfidence is returned when the reported confidence is
	// zero or exceeds 10000 basis points.
	ErrInvalidConfidence = errors.New("confidence out of range")
)

// OracleRegistry is the oracle registry as needed by the aggregation
// engine.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/oracle_registry_mock.go -package mocks code.helixprotocol.io/helix/core/pricing OracleRegistry
type OracleRegistry interface {
	IsAuthorized(provider string) bool
	ActiveProviders() []*types.OracleProvider
	MarkSubmission(provider string, t time.Time)
}

type volumeEntry struct {
	t time.Time
	v *num.Uint
}

type breakerState struct {
	triggered     bool
	triggeredAt   time.Time
	confirmations int
}

// assetState is everything the engine holds per asset symbol.
type assetState struct {
	// provider ID -> latest accepted submission, replaced never mutated
	submissions map[string]*types.PriceSubmission
	last        *types.AggregatedPrice
	history     *history
	breaker     breakerState
	volumes     []volumeEntry
}

// Engine aggregates untrusted provider submissions into the reference
// price, detects abnormal deviation and serves TWAP queries. All state
// transitions are driven by the sequential transaction log, the engine
// never reads the wall clock.
type Engine struct {
	log *logging.Logger
	Config

	registry  OracleRegistry
	roles     *roles.Table
	broker    broker.Interface
	assets    map[string]*assetState
	now       time.Time
}

// NewEngine instantiates the price aggregation engine.
func NewEngine(log *logging.Logger, config Config, registry OracleRegistry, roleTable *roles.Table, broker broker.Interface) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Engine{
		log:      log,
		Config:   config,
		registry: registry,
		roles:    roleTable,
		broker:   broker,
		assets:   map[string]*assetState{},
	}
}

// OnTick notifies the engine of the current transaction-log time.
func (e *Engine) OnTick(_ context.Context, t time.Time) {
	e.now = t
	for _, st := range e.assets {
		st.pruneVolumes(t)
	}
}

// Now returns the engine's view of the current time.
func (e *Engine) Now() time.Time {
	return e.now
}

// SubmitPrice accepts a provider's price report for an asset. On
// acceptance the report replaces any prior value from the same provider
// for that asset and the aggregate is recomputed.
func (e *Engine) SubmitPrice(ctx context.Context, provider, asset string, price *num.Uint, confidence uint64, observedAt time.Time) error {
	if !e.registry.IsAuthorized(provider) {
		return roles.ErrUnauthorized
	}
	if price == nil || price.IsZero() {
		return ErrInvalidPrice
	}
	if confidence == 0 || confidence > types.BasisPoints {
		return ErrInvalidConfidence
	}
	if e.now.Sub(observedAt) > e.Heartbeat.Get() {
		return ErrStalePrice
	}

	st := e.getAsset(asset)
	st.submissions[provider] = &types.PriceSubmission{
		Provider:   provider,
		Asset:      asset,
		Price:      price.Clone(),
		Confidence: confidence,
		Time:       observedAt,
	}
	e.registry.MarkSubmission(provider, e.now)
	metrics.PriceSubmissionCounterInc(asset)

	if e.log.IsDebug() {
		e.log.Debug("price submission accepted",
			logging.String("provider", provider),
			logging.String("asset", asset),
			logging.Stringer("price", price),
			logging.Uint64("confidence", confidence))
	}

	// a submission below quorum is accepted but produces no aggregate
	if err := e.refresh(ctx, asset, st); err != nil {
		if errors.Is(err, ErrInsufficientProviders) {
			metrics.QuorumFailureCounterInc(asset)
			return nil
		}
		return err
	}
	return nil
}

// Refresh recomputes and records the aggregated price for an asset
// without a new submission, e.g. after time has moved on.
func (e *Engine) Refresh(ctx context.Context, asset string) error {
	st, ok := e.assets[asset]
	if !ok {
		return ErrUnknownAsset
	}
	return e.refresh(ctx, asset, st)
}

// GetAggregatedPrice computes the confidence-weighted median across all
// active providers' fresh submissions. It is a pure read reflecting the
// most recently accepted submissions at call time.
func (e *Engine) GetAggregatedPrice(asset string) (*types.AggregatedPrice, error) {
	st, ok := e.assets[asset]
	if !ok {
		return nil, ErrUnknownAsset
	}
	return e.aggregate(asset, st)
}

// RecordVolume feeds traded volume from the trading engine into the
// rolling 24h window backing history points.
func (e *Engine) RecordVolume(asset string, volume *num.Uint) {
	st := e.getAsset(asset)
	st.volumes = append(st.volumes, volumeEntry{t: e.now, v: volume.Clone()})
}

// IsFrozen exposes the circuit breaker state for an asset. Dependent
// engines must treat a frozen asset as untradeable for minting and
// liquidation purposes.
func (e *Engine) IsFrozen(asset string) bool {
	st, ok := e.assets[asset]
	return ok && st.breaker.triggered
}

// ResetCircuitBreaker clears the breaker for an asset. Controller only.
func (e *Engine) ResetCircuitBreaker(ctx context.Context, caller, asset string) error {
	if err := e.roles.Ensure(roles.RoleController, caller); err != nil {
		return err
	}
	st, ok := e.assets[asset]
	if !ok {
		return ErrUnknownAsset
	}
	if !st.breaker.triggered {
		return nil
	}
	st.breaker = breakerState{}
	metrics.CircuitBreakerGaugeSet(asset, false)
	e.log.Info("circuit breaker manually reset", logging.String("asset", asset))
	e.broker.Send(events.NewCircuitBreaker(ctx, asset, false))
	return nil
}

// GetTWAP returns the time-weighted average price over the given
// period, linearly interpolated between recorded points.
func (e *Engine) GetTWAP(asset string, period time.Duration) (*num.Uint, error) {
	st, ok := e.assets[asset]
	if !ok {
		return nil, ErrUnknownAsset
	}
	if st.history.len() == 0 {
		return nil, ErrInsufficientHistory
	}
	from := e.now.Add(-period)
	if st.history.oldest().Time.After(from) {
		return nil, ErrInsufficientHistory
	}
	avg := st.history.twap(from, e.now)
	out, _ := num.UintFromDecimal(avg.Floor())
	return out, nil
}

// PriceHistory returns the retained history points for an asset in
// chronological order.
func (e *Engine) PriceHistory(asset string) ([]*types.PriceHistoryPoint, error) {
	st, ok := e.assets[asset]
	if !ok {
		return nil, ErrUnknownAsset
	}
	out := make([]*types.PriceHistoryPoint, 0, st.history.len())
	for i := 0; i < st.history.len(); i++ {
		out = append(out, st.history.at(i).DeepClone())
	}
	return out, nil
}

func (e *Engine) getAsset(asset string) *assetState {
	st, ok := e.assets[asset]
	if !ok {
		st = &assetState{
			submissions: map[string]*types.PriceSubmission{},
			history:     newHistory(e.HistoryDepth),
		}
		e.assets[asset] = st
	}
	return st
}

// refresh recomputes the aggregate, runs the deviation check and
// records the result in history.
func (e *Engine) refresh(ctx context.Context, asset string, st *assetState) error {
	agg, err := e.aggregate(asset, st)
	if err != nil {
		return err
	}

	prev := st.last
	st.last = agg

	// deviation check against the previous aggregated value. The spike
	// is still recorded, the breaker freezes its consumers instead.
	if prev != nil && e.exceedsDeviation(prev.Price, agg.Price) {
		if !st.breaker.triggered {
			st.breaker = breakerState{triggered: true, triggeredAt: e.now}
			metrics.CircuitBreakerGaugeSet(asset, true)
			e.log.Warn("circuit breaker triggered",
				logging.String("asset", asset),
				logging.Stringer("previous-price", prev.Price),
				logging.Stringer("new-price", agg.Price))
			e.broker.Send(events.NewCircuitBreaker(ctx, asset, true))
		} else {
			// still jumping around, restart the confirmation chain
			st.breaker.confirmations = 0
		}
	} else if st.breaker.triggered {
		st.breaker.confirmations++
		if e.now.Sub(st.breaker.triggeredAt) >= e.BreakerCooldown.Get() &&
			st.breaker.confirmations >= e.RequiredConfirmations {
			st.breaker = breakerState{}
			metrics.CircuitBreakerGaugeSet(asset, false)
			e.log.Info("circuit breaker cleared after confirmations",
				logging.String("asset", asset))
			e.broker.Send(events.NewCircuitBreaker(ctx, asset, false))
		}
	}

	st.history.add(&types.PriceHistoryPoint{
		Time:     e.now,
		Price:    agg.Price.Clone(),
		Volume24: st.volume24(e.now),
		Change24: e.change24(st, agg.Price),
	})
	e.broker.Send(events.NewPriceUpdate(ctx, agg))
	return nil
}

// aggregate computes the confidence-weighted median over fresh
// submissions from active providers. Pure, no state is mutated.
func (e *Engine) aggregate(asset string, st *assetState) (*types.AggregatedPrice, error) {
	providers := e.registry.ActiveProviders()
	cutoff := e.now.Add(-e.Heartbeat.Get())

	entries := make([]medianEntry, 0, len(providers))
	for _, p := range providers {
		sub, ok := st.submissions[p.ID]
		if !ok || sub.Time.Before(cutoff) {
			continue
		}
		weight := p.Reliability * sub.Confidence
		if weight == 0 {
			continue
		}
		entries = append(entries, medianEntry{
			price:      sub.Price,
			weight:     weight,
			confidence: sub.Confidence,
			sequence:   p.Sequence,
		})
	}
	if len(entries) < e.MinProviders {
		return nil, ErrInsufficientProviders
	}

	price, confidence := weightedMedian(entries)
	return &types.AggregatedPrice{
		Asset:         asset,
		Price:         price,
		Time:          e.now,
		Confidence:    confidence,
		ProviderCount: len(entries),
	}, nil
}

// exceedsDeviation returns true if the relative change from prev to
// next is beyond the configured threshold.
func (e *Engine) exceedsDeviation(prev, next *num.Uint) bool {
	if prev.IsZero() {
		return false
	}
	delta, _ := num.UintZero().Delta(next, prev)
	change := delta.ToDecimal().Div(prev.ToDecimal())
	threshold := types.BpsToDecimal(e.DeviationThreshold)
	return change.GreaterThan(threshold)
}

func (e *Engine) change24(st *assetState, current *num.Uint) num.Decimal {
	ref := st.history.priceAtOrBefore(e.now.Add(-24 * time.Hour))
	if ref == nil || ref.IsZero() {
		return num.DecimalZero()
	}
	return current.ToDecimal().Sub(ref.ToDecimal()).Div(ref.ToDecimal())
}

func (st *assetState) pruneVolumes(now time.Time) {
	cutoff := now.Add(-24 * time.Hour)
	keep := st.volumes[:0]
	for _, v := range st.volumes {
		if !v.t.Before(cutoff) {
			keep = append(keep, v)
		}
	}
	st.volumes = keep
}

func (st *assetState) volume24(now time.Time) *num.Uint {
	st.pruneVolumes(now)
	total := num.UintZero()
	for _, v := range st.volumes {
		total.AddSum(v.v)
	}
	return total
}
