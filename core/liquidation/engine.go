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
	"context"
	"errors"
	"time"

	"code.helixprotocol.io/helix/core/broker"
	"code.helixprotocol.io/helix/core/events"
	"code.helixprotocol.io/helix/core/pricing"
	"code.helixprotocol.io/helix/core/types"
	"code.helixprotocol.io/helix/libs/num"
	"code.helixprotocol.io/helix/logging"
	"code.helixprotocol.io/helix/metrics"
)

var (
	// ErrNotLiquidatable is returned when the position's current ratio
	// sits at or above the liquidation threshold.
	ErrNotLiquidatable = errors.New("position is not below the liquidation threshold")
	// ErrNothingMinted is returned when liquidating a position with no debt.
	ErrNothingMinted = errors.New("position has no minted debt")
)

// CollateralEngine is the collateral ledger as needed by the
// liquidation engine.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/collateral_engine_mock.go -package mocks code.helixprotocol.io/helix/core/liquidation CollateralEngine
type CollateralEngine interface {
	Position(owner, asset, token string) (*types.CollateralPosition, error)
	Token(id string) (*types.CollateralToken, error)
	GetCollateralRatio(owner, asset, token string) (num.Decimal, bool, error)
	ApplyLiquidation(ctx context.Context, owner, asset, token, liquidator string, repay, seize, insuranceCut, reward *num.Uint) error
}

// Assets provides the synthetic asset risk parameters.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/assets_mock.go -package mocks code.helixprotocol.io/helix/core/liquidation Assets
type Assets interface {
	Params(symbol string) (*types.AssetParams, error)
}

// PriceEngine is the price aggregation engine as needed by the
// liquidation engine.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/price_engine_mock.go -package mocks code.helixprotocol.io/helix/core/liquidation PriceEngine
type PriceEngine interface {
	GetAggregatedPrice(asset string) (*types.AggregatedPrice, error)
	IsFrozen(asset string) bool
}

// Result describes a completed liquidation.
type Result struct {
	Repaid           *num.Uint
	Seized           *num.Uint
	InsuranceCredit  *num.Uint
	LiquidatorReward *num.Uint
	Closed           bool
}

// Engine runs the liquidation protocol. Position states are evaluated
// lazily from current aggregated prices when a position is checked or
// liquidated, no background scanning happens.
type Engine struct {
	log *logging.Logger
	Config

	collateral CollateralEngine
	assets     Assets
	prices     PriceEngine
	broker     broker.Interface

	// last observed state per position key, used to emit transitions
	states map[string]types.PositionState

	now time.Time
}

// New instantiates the liquidation engine.
func New(log *logging.Logger, config Config, col CollateralEngine, assets Assets, prices PriceEngine, broker broker.Interface) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Engine{
		log:        log,
		Config:     config,
		collateral: col,
		assets:     assets,
		prices:     prices,
		broker:     broker,
		states:     map[string]types.PositionState{},
	}
}

// OnTick notifies the engine of the current transaction-log time.
func (e *Engine) OnTick(_ context.Context, t time.Time) {
	e.now = t
}

// Check evaluates the position's state from current prices and emits a
// state event when it changed since the last evaluation.
func (e *Engine) Check(ctx context.Context, owner, asset, token string) (types.PositionState, error) {
	pos, err := e.collateral.Position(owner, asset, token)
	if err != nil {
		return types.PositionStateClosed, err
	}
	state, err := e.evaluate(pos, owner, asset, token)
	if err != nil {
		return state, err
	}
	e.transition(ctx, pos, owner, asset, token, state)
	return state, nil
}

// LiquidatePosition executes the liquidation protocol against a
// position below the liquidation threshold. The ratio is re-evaluated
// from the current aggregated prices at execution time, a stale
// at-risk observation is not sufficient.
func (e *Engine) LiquidatePosition(ctx context.Context, liquidator, owner, asset, token string) (*Result, error) {
	defer metrics.EngineTimeCounterAdd(time.Now(), "liquidation", "LiquidatePosition")

	if e.prices.IsFrozen(asset) {
		return nil, pricing.ErrPriceFrozen
	}
	pos, err := e.collateral.Position(owner, asset, token)
	if err != nil {
		return nil, err
	}
	if pos.Minted.IsZero() {
		return nil, ErrNothingMinted
	}
	params, err := e.assets.Params(asset)
	if err != nil {
		return nil, err
	}
	ratio, defined, err := e.collateral.GetCollateralRatio(owner, asset, token)
	if err != nil {
		return nil, err
	}
	if !defined || ratio.GreaterThanOrEqual(num.DecimalFromInt64(int64(params.LiquidationThreshold))) {
		return nil, ErrNotLiquidatable
	}

	res, err := e.plan(pos, params, asset, token)
	if err != nil {
		return nil, err
	}
	if err := e.collateral.ApplyLiquidation(ctx, owner, asset, token, liquidator,
		res.Repaid, res.Seized, res.InsuranceCredit, res.LiquidatorReward); err != nil {
		return nil, err
	}

	e.broker.Send(events.NewLiquidation(ctx, owner, asset, token, liquidator,
		res.Repaid, res.Seized, res.InsuranceCredit, res.LiquidatorReward, res.Closed))
	metrics.LiquidationCounterInc(asset)

	if after, err := e.collateral.Position(owner, asset, token); err == nil {
		state := types.PositionStateClosed
		if !res.Closed {
			state, _ = e.evaluate(after, owner, asset, token)
		}
		e.transition(ctx, after, owner, asset, token, state)
	}

	e.log.Info("position liquidated",
		logging.String("owner", owner),
		logging.String("asset", asset),
		logging.String("repaid", res.Repaid.String()),
		logging.String("seized", res.Seized.String()),
		logging.Bool("closed", res.Closed))
	return res, nil
}

// plan computes the repay and seize amounts. A partial liquidation
// repays the smallest amount restoring the position to the minimum
// collateralisation ratio, rounded up so the restored ratio is never
// short. The seized collateral is worth the repaid debt plus the
// penalty, rounded down against the liquidator.
func (e *Engine) plan(pos *types.CollateralPosition, params *types.AssetParams, asset, token string) (*Result, error) {
	tok, err := e.collateral.Token(token)
	if err != nil {
		return nil, err
	}
	tokenPrice, err := e.prices.GetAggregatedPrice(tok.Symbol)
	if err != nil {
		return nil, err
	}
	assetPrice, err := e.prices.GetAggregatedPrice(asset)
	if err != nil {
		return nil, err
	}

	pa := assetPrice.Price.ToDecimal()
	pc := tokenPrice.Price.ToDecimal()
	f := types.BpsToDecimal(tok.Factor)
	r := types.BpsToDecimal(params.MinCollateralRatio)
	onePlusP := num.DecimalOne().Add(types.BpsToDecimal(e.Penalty))

	c := pos.Collateral.ToDecimal()
	d := pos.Minted.ToDecimal()

	// smallest repay x with
	//   (c*pc - x*pa*(1+p)) * f  >=  r * (d - x) * pa
	numer := r.Mul(d).Mul(pa).Sub(c.Mul(pc).Mul(f))
	denom := pa.Mul(r.Sub(onePlusP.Mul(f)))

	closed := false
	var repay *num.Uint
	if denom.IsPositive() {
		repay, _ = num.UintFromDecimal(numer.Div(denom).Ceil())
		if repay.GTE(pos.Minted) {
			closed = true
		}
	} else {
		// the penalty outruns the ratio requirement, no partial repay
		// can restore the position
		closed = true
	}
	if closed {
		repay = pos.Minted.Clone()
	}

	seize := e.collateralFor(repay, pa, pc, onePlusP)
	if seize.GT(pos.Collateral) {
		seize = pos.Collateral.Clone()
	}

	if !closed {
		remaining := num.UintZero().Sub(pos.Collateral, seize)
		if remaining.LT(num.NewUint(e.MinViableCollateral)) {
			// dust positions are closed outright
			closed = true
			repay = pos.Minted.Clone()
			seize = e.collateralFor(repay, pa, pc, onePlusP)
			if seize.GT(pos.Collateral) {
				seize = pos.Collateral.Clone()
			}
		}
	}

	// the penalty is whatever of the seizure exceeds the plain value of
	// the repaid debt, split between the insurance fund and liquidator
	base := e.collateralFor(repay, pa, pc, num.DecimalOne())
	if base.GT(seize) {
		base = seize.Clone()
	}
	penalty := num.UintZero().Sub(seize, base)
	insuranceCut := num.UintZero().Div(
		num.UintZero().Mul(penalty, num.NewUint(e.InsuranceShare)),
		num.NewUint(types.BasisPoints),
	)
	reward := num.UintZero().Sub(penalty, insuranceCut)

	return &Result{
		Repaid:           repay,
		Seized:           seize,
		InsuranceCredit:  insuranceCut,
		LiquidatorReward: reward,
		Closed:           closed,
	}, nil
}

// collateralFor converts a synthetic amount into collateral token
// units at the given prices and multiplier, rounded down.
func (e *Engine) collateralFor(amount *num.Uint, pa, pc, mult num.Decimal) *num.Uint {
	v, _ := num.UintFromDecimal(amount.ToDecimal().Mul(pa).Mul(mult).Div(pc).Floor())
	return v
}

func (e *Engine) evaluate(pos *types.CollateralPosition, owner, asset, token string) (types.PositionState, error) {
	if pos.Minted.IsZero() {
		if pos.Collateral.IsZero() {
			return types.PositionStateClosed, nil
		}
		return types.PositionStateHealthy, nil
	}
	params, err := e.assets.Params(asset)
	if err != nil {
		return types.PositionStateHealthy, err
	}
	ratio, defined, err := e.collateral.GetCollateralRatio(owner, asset, token)
	if err != nil {
		return types.PositionStateHealthy, err
	}
	if !defined {
		return types.PositionStateHealthy, nil
	}
	if ratio.LessThan(num.DecimalFromInt64(int64(params.LiquidationThreshold))) {
		return types.PositionStateLiquidating, nil
	}
	if ratio.LessThan(num.DecimalFromInt64(int64(params.MinCollateralRatio))) {
		return types.PositionStateAtRisk, nil
	}
	return types.PositionStateHealthy, nil
}

func (e *Engine) transition(ctx context.Context, pos *types.CollateralPosition, owner, asset, token string, state types.PositionState) {
	key := types.PositionKey(owner, asset, token)
	if prev, ok := e.states[key]; ok && prev == state {
		return
	}
	e.states[key] = state
	e.broker.Send(events.NewPositionState(ctx, pos, state))
}
