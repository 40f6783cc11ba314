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

package collateral

import (
	"context"
	"errors"
	"sort"
	"time"

	"code.helixprotocol.io/helix/core/broker"
	"code.helixprotocol.io/helix/core/events"
	"code.helixprotocol.io/helix/core/pricing"
	"code.helixprotocol.io/helix/core/roles"
	"code.helixprotocol.io/helix/core/types"
	"code.helixprotocol.io/helix/libs/num"
	"code.helixprotocol.io/helix/logging"
	"code.helixprotocol.io/helix/metrics"
	"golang.org/x/exp/maps"
)

var (
	// ErrRatioViolation is returned when a mutation would leave the
	// position below the minimum collateralisation ratio.
	ErrRatioViolation = errors.New("operation would violate the minimum collateral ratio")
	// ErrSupplyExceeded is returned when a mint would push the asset's
	// circulating supply past its maximum.
	ErrSupplyExceeded = errors.New("mint exceeds the asset max supply")
	// ErrInsufficientMinted is returned when burning more than the
	// position's minted balance.
	ErrInsufficientMinted = errors.New("burn amount exceeds minted balance")
	// ErrInsufficientCollateral is returned when withdrawing more than
	// the position's collateral balance.
	ErrInsufficientCollateral = errors.New("withdrawal exceeds collateral balance")
	// ErrUnknownCollateralToken is returned when the token was never enabled.
	ErrUnknownCollateralToken = errors.New("unknown collateral token")
	// ErrCollateralTokenInactive is returned on deposits against a
	// disabled collateral token.
	ErrCollateralTokenInactive = errors.New("collateral token is not active")
	// ErrUnknownPosition is returned when no position exists for the
	// (owner, asset, token) triple.
	ErrUnknownPosition = errors.New("unknown collateral position")
	// ErrAssetInactive is returned when minting against a deactivated asset.
	ErrAssetInactive = errors.New("asset is not active")
	// ErrInvalidAmount is returned on nil or zero amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientInsuranceBalance is returned when a governance
	// withdrawal exceeds the fund balance for the token.
	ErrInsufficientInsuranceBalance = errors.New("insufficient insurance fund balance")
	// ErrInvalidCollateralFactor is returned when enabling a token with
	// a factor above 10000 basis points.
	ErrInvalidCollateralFactor = errors.New("collateral factor out of range")
)

// Assets provides the synthetic asset risk parameters, read on every
// ratio computation.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/assets_mock.go -package mocks code.helixprotocol.io/helix/core/collateral Assets
type Assets interface {
	Params(symbol string) (*types.AssetParams, error)
}

// PriceEngine is the price aggregation engine as needed by the ledger.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/price_engine_mock.go -package mocks code.helixprotocol.io/helix/core/collateral PriceEngine
type PriceEngine interface {
	GetAggregatedPrice(asset string) (*types.AggregatedPrice, error)
	IsFrozen(asset string) bool
}

// Engine is the collateral ledger. It owns the collateral positions,
// the per-asset circulating supply and the insurance fund balances, and
// enforces the collateralisation invariant on every owner-initiated
// mutation. Rejected operations leave all state untouched.
type Engine struct {
	log *logging.Logger
	Config

	assets Assets
	prices PriceEngine
	roles  *roles.Table
	broker broker.Interface

	tokens    map[string]*types.CollateralToken
	positions map[string]*types.CollateralPosition
	supply    map[string]*num.Uint // asset -> circulating synthetic supply
	insurance map[string]*num.Uint // token -> insurance fund balance

	now time.Time
}

// New instantiates the collateral ledger.
func New(log *logging.Logger, config Config, assets Assets, prices PriceEngine, roleTable *roles.Table, broker broker.Interface) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Engine{
		log:       log,
		Config:    config,
		assets:    assets,
		prices:    prices,
		roles:     roleTable,
		broker:    broker,
		tokens:    map[string]*types.CollateralToken{},
		positions: map[string]*types.CollateralPosition{},
		supply:    map[string]*num.Uint{},
		insurance: map[string]*num.Uint{},
	}
}

// OnTick notifies the ledger of the current transaction-log time.
func (e *Engine) OnTick(_ context.Context, t time.Time) {
	e.now = t
}

// EnableCollateralToken admits a token as collateral. Controller only.
func (e *Engine) EnableCollateralToken(ctx context.Context, caller string, token *types.CollateralToken) error {
	if err := e.roles.Ensure(roles.RoleController, caller); err != nil {
		return err
	}
	if token.Factor > types.BasisPoints {
		return ErrInvalidCollateralFactor
	}
	e.tokens[token.ID] = token.DeepClone()
	e.log.Info("collateral token enabled",
		logging.String("token", token.ID),
		logging.Uint64("factor", token.Factor))
	return nil
}

// Token returns a copy of an enabled collateral token record.
func (e *Engine) Token(id string) (*types.CollateralToken, error) {
	t, ok := e.tokens[id]
	if !ok {
		return nil, ErrUnknownCollateralToken
	}
	return t.DeepClone(), nil
}

// Deposit credits collateral to the owner's position, creating the
// position on first use.
func (e *Engine) Deposit(ctx context.Context, owner, asset, token string, amount *num.Uint) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	tok, ok := e.tokens[token]
	if !ok {
		return ErrUnknownCollateralToken
	}
	if !tok.Active {
		return ErrCollateralTokenInactive
	}

	pos := e.getOrCreatePosition(owner, asset, token)
	pos.Collateral.AddSum(amount)
	pos.UpdatedAt = e.now

	e.broker.Send(events.NewLedgerMovement(ctx, []*types.LedgerEntry{{
		FromAccount: types.AccountExternal,
		ToAccount:   types.OwnerAccount(owner, token),
		Token:       token,
		Amount:      amount.Clone(),
		Type:        types.TransferTypeDeposit,
		Timestamp:   e.now.UnixNano(),
	}}))
	return nil
}

// Withdraw debits collateral from the owner's position. The withdrawal
// is rejected if it would breach the minimum collateralisation ratio
// for any synthetic amount currently minted against the collateral.
func (e *Engine) Withdraw(ctx context.Context, owner, asset, token string, amount *num.Uint) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	pos, ok := e.positions[types.PositionKey(owner, asset, token)]
	if !ok {
		return ErrUnknownPosition
	}
	if amount.GT(pos.Collateral) {
		return ErrInsufficientCollateral
	}

	if !pos.Minted.IsZero() {
		params, err := e.assets.Params(asset)
		if err != nil {
			return err
		}
		remaining := num.UintZero().Sub(pos.Collateral, amount)
		ratio, err := e.ratio(remaining, pos.Minted, asset, token)
		if err != nil {
			return err
		}
		if ratio.LessThan(num.DecimalFromInt64(int64(params.MinCollateralRatio))) {
			return ErrRatioViolation
		}
	}

	pos.Collateral.Sub(pos.Collateral, amount)
	pos.UpdatedAt = e.now

	e.broker.Send(events.NewLedgerMovement(ctx, []*types.LedgerEntry{{
		FromAccount: types.OwnerAccount(owner, token),
		ToAccount:   types.AccountExternal,
		Token:       token,
		Amount:      amount.Clone(),
		Type:        types.TransferTypeWithdraw,
		Timestamp:   e.now.UnixNano(),
	}}))
	return nil
}

// Mint issues synthetic tokens against the position's collateral. The
// asset must not be frozen, the resulting ratio must stay at or above
// the minimum, and the circulating supply is bounded by max supply.
func (e *Engine) Mint(ctx context.Context, owner, asset, token string, amount *num.Uint) error {
	defer metrics.EngineTimeCounterAdd(time.Now(), "collateral", "Mint")

	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	pos, ok := e.positions[types.PositionKey(owner, asset, token)]
	if !ok {
		return ErrUnknownPosition
	}
	params, err := e.assets.Params(asset)
	if err != nil {
		return err
	}
	if !params.Active {
		return ErrAssetInactive
	}
	if e.prices.IsFrozen(asset) {
		return pricing.ErrPriceFrozen
	}

	supply := e.supplyOf(asset)
	if num.UintZero().Add(supply, amount).GT(params.MaxSupply) {
		return ErrSupplyExceeded
	}

	minted := num.UintZero().Add(pos.Minted, amount)
	ratio, err := e.ratio(pos.Collateral, minted, asset, token)
	if err != nil {
		return err
	}
	if ratio.LessThan(num.DecimalFromInt64(int64(params.MinCollateralRatio))) {
		return ErrRatioViolation
	}

	pos.Minted.AddSum(amount)
	supply.AddSum(amount)
	pos.UpdatedAt = e.now

	e.broker.Send(events.NewLedgerMovement(ctx, []*types.LedgerEntry{{
		FromAccount: types.AccountSynthetic,
		ToAccount:   types.OwnerAccount(owner, asset),
		Token:       asset,
		Amount:      amount.Clone(),
		Type:        types.TransferTypeMint,
		Timestamp:   e.now.UnixNano(),
	}}))
	return nil
}

// Burn retires synthetic tokens, reducing the position's minted amount
// and the asset's circulating supply.
func (e *Engine) Burn(ctx context.Context, owner, asset, token string, amount *num.Uint) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	pos, ok := e.positions[types.PositionKey(owner, asset, token)]
	if !ok {
		return ErrUnknownPosition
	}
	if amount.GT(pos.Minted) {
		return ErrInsufficientMinted
	}

	pos.Minted.Sub(pos.Minted, amount)
	e.supplyOf(asset).Sub(e.supplyOf(asset), amount)
	pos.UpdatedAt = e.now

	e.broker.Send(events.NewLedgerMovement(ctx, []*types.LedgerEntry{{
		FromAccount: types.OwnerAccount(owner, asset),
		ToAccount:   types.AccountSynthetic,
		Token:       asset,
		Amount:      amount.Clone(),
		Type:        types.TransferTypeBurn,
		Timestamp:   e.now.UnixNano(),
	}}))
	return nil
}

// GetCollateralRatio computes the position's current collateralisation
// ratio in basis points from the latest aggregated prices. The second
// return is false when nothing is minted and the ratio is undefined.
func (e *Engine) GetCollateralRatio(owner, asset, token string) (num.Decimal, bool, error) {
	pos, ok := e.positions[types.PositionKey(owner, asset, token)]
	if !ok {
		return num.DecimalZero(), false, ErrUnknownPosition
	}
	if pos.Minted.IsZero() {
		return num.MaxDecimal(), false, nil
	}
	ratio, err := e.ratio(pos.Collateral, pos.Minted, asset, token)
	if err != nil {
		return num.DecimalZero(), false, err
	}
	return ratio, true, nil
}

// Position returns a copy of the position for the triple.
func (e *Engine) Position(owner, asset, token string) (*types.CollateralPosition, error) {
	pos, ok := e.positions[types.PositionKey(owner, asset, token)]
	if !ok {
		return nil, ErrUnknownPosition
	}
	return pos.DeepClone(), nil
}

// Positions returns copies of all positions in deterministic key order.
func (e *Engine) Positions() []*types.CollateralPosition {
	keys := maps.Keys(e.positions)
	sort.Strings(keys)
	out := make([]*types.CollateralPosition, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.positions[k].DeepClone())
	}
	return out
}

// Supply returns the circulating synthetic supply for an asset.
func (e *Engine) Supply(asset string) *num.Uint {
	return e.supplyOf(asset).Clone()
}

// InsuranceBalance returns the insurance fund balance for a token.
func (e *Engine) InsuranceBalance(token string) *num.Uint {
	if b, ok := e.insurance[token]; ok {
		return b.Clone()
	}
	return num.UintZero()
}

// WithdrawInsurance is the governance-gated solvency backstop payout.
func (e *Engine) WithdrawInsurance(ctx context.Context, caller, token string, amount *num.Uint) error {
	if err := e.roles.Ensure(roles.RoleController, caller); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	balance, ok := e.insurance[token]
	if !ok || amount.GT(balance) {
		return ErrInsufficientInsuranceBalance
	}
	balance.Sub(balance, amount)

	e.broker.Send(events.NewLedgerMovement(ctx, []*types.LedgerEntry{{
		FromAccount: types.AccountInsurance,
		ToAccount:   types.AccountExternal,
		Token:       token,
		Amount:      amount.Clone(),
		Type:        types.TransferTypeInsuranceWithdrawal,
		Timestamp:   e.now.UnixNano(),
	}}))
	return nil
}

// ApplyLiquidation force-mutates a position per the liquidation
// protocol: repays minted debt, seizes collateral, credits the penalty
// split to the insurance fund and the liquidator. Only the liquidation
// engine calls this, after validating the amounts against the current
// aggregated price.
func (e *Engine) ApplyLiquidation(ctx context.Context, owner, asset, token, liquidator string, repay, seize, insuranceCut, reward *num.Uint) error {
	defer metrics.EngineTimeCounterAdd(time.Now(), "collateral", "ApplyLiquidation")

	pos, ok := e.positions[types.PositionKey(owner, asset, token)]
	if !ok {
		return ErrUnknownPosition
	}
	if repay.GT(pos.Minted) {
		return ErrInsufficientMinted
	}
	if seize.GT(pos.Collateral) {
		return ErrInsufficientCollateral
	}
	if num.UintZero().Add(insuranceCut, reward).GT(seize) {
		return ErrInvalidAmount
	}

	pos.Minted.Sub(pos.Minted, repay)
	e.supplyOf(asset).Sub(e.supplyOf(asset), repay)
	pos.Collateral.Sub(pos.Collateral, seize)
	pos.UpdatedAt = e.now

	fund, ok := e.insurance[token]
	if !ok {
		fund = num.UintZero()
		e.insurance[token] = fund
	}
	fund.AddSum(insuranceCut)

	// whatever of the seized collateral is not a penalty cut goes to
	// the liquidator as compensation for the repaid debt
	liquidatorTake := num.UintZero().Sub(seize, insuranceCut)

	e.broker.Send(events.NewLedgerMovement(ctx, []*types.LedgerEntry{
		{
			FromAccount: types.OwnerAccount(owner, asset),
			ToAccount:   types.AccountSynthetic,
			Token:       asset,
			Amount:      repay.Clone(),
			Type:        types.TransferTypeLiquidationRepay,
			Timestamp:   e.now.UnixNano(),
		},
		{
			FromAccount: types.OwnerAccount(owner, token),
			ToAccount:   types.AccountInsurance,
			Token:       token,
			Amount:      insuranceCut.Clone(),
			Type:        types.TransferTypeInsurancePenalty,
			Timestamp:   e.now.UnixNano(),
		},
		{
			FromAccount: types.OwnerAccount(owner, token),
			ToAccount:   types.OwnerAccount(liquidator, token),
			Token:       token,
			Amount:      liquidatorTake,
			Type:        types.TransferTypeLiquidatorReward,
			Timestamp:   e.now.UnixNano(),
		},
	}))
	return nil
}

func (e *Engine) getOrCreatePosition(owner, asset, token string) *types.CollateralPosition {
	key := types.PositionKey(owner, asset, token)
	pos, ok := e.positions[key]
	if !ok {
		pos = &types.CollateralPosition{
			Owner:      owner,
			Asset:      asset,
			Token:      token,
			Collateral: num.UintZero(),
			Minted:     num.UintZero(),
			UpdatedAt:  e.now,
		}
		e.positions[key] = pos
	}
	return pos
}

func (e *Engine) supplyOf(asset string) *num.Uint {
	s, ok := e.supply[asset]
	if !ok {
		s = num.UintZero()
		e.supply[asset] = s
	}
	return s
}

// ratio computes collateral value x factor over debt value, expressed
// in basis points and floored: a borderline fractional remainder denies
// rather than permits.
func (e *Engine) ratio(collateral, minted *num.Uint, asset, token string) (num.Decimal, error) {
	tok, ok := e.tokens[token]
	if !ok {
		return num.DecimalZero(), ErrUnknownCollateralToken
	}
	tokenPrice, err := e.prices.GetAggregatedPrice(tok.Symbol)
	if err != nil {
		return num.DecimalZero(), err
	}
	assetPrice, err := e.prices.GetAggregatedPrice(asset)
	if err != nil {
		return num.DecimalZero(), err
	}

	debtValue := minted.ToDecimal().Mul(assetPrice.Price.ToDecimal())
	if debtValue.IsZero() {
		return num.MaxDecimal(), nil
	}
	collateralValue := collateral.ToDecimal().
		Mul(tokenPrice.Price.ToDecimal()).
		Mul(types.BpsToDecimal(tok.Factor))

	bps := collateralValue.Mul(num.DecimalFromInt64(int64(types.BasisPoints))).Div(debtValue)
	return bps.Floor(), nil
}
