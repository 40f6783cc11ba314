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

package liquidation_test

import (
	"context"
	"testing"
	"time"

	bmocks "code.helixprotocol.io/helix/core/broker/mocks"
	"code.helixprotocol.io/helix/core/collateral"
	cmocks "code.helixprotocol.io/helix/core/collateral/mocks"
	"code.helixprotocol.io/helix/core/liquidation"
	"code.helixprotocol.io/helix/core/pricing"
	"code.helixprotocol.io/helix/core/roles"
	"code.helixprotocol.io/helix/core/types"
	"code.helixprotocol.io/helix/libs/num"
	"code.helixprotocol.io/helix/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	controller = "gov-party-1"
	owner      = "party-1"
	liquidator = "liquidator-1"
	asset      = "hBTC"
	token      = "usdc-token"
)

// tstEngine wires the liquidation engine to a real collateral ledger
// so repay and seize amounts flow through the actual balances. Prices
// are mocked and settable so tests can move the market.
type tstEngine struct {
	*liquidation.Engine
	col    *collateral.Engine
	ctrl   *gomock.Controller
	broker *bmocks.MockInterface
	assets *cmocks.MockAssets
	prices *cmocks.MockPriceEngine

	assetPrice *num.Uint
	tokenPrice *num.Uint
	frozen     bool
}

func getTestEngine(t *testing.T) *tstEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	brokerMock := bmocks.NewMockInterface(ctrl)
	assetsMock := cmocks.NewMockAssets(ctrl)
	pricesMock := cmocks.NewMockPriceEngine(ctrl)
	roleTable := roles.NewTable(controller)

	col := collateral.New(logging.NewTestLogger(), collateral.NewDefaultConfig(), assetsMock, pricesMock, roleTable, brokerMock)
	eng := liquidation.New(logging.NewTestLogger(), liquidation.NewDefaultConfig(), col, assetsMock, pricesMock, brokerMock)

	now := time.Unix(1700000000, 0)
	ctx := context.Background()
	col.OnTick(ctx, now)
	eng.OnTick(ctx, now)

	tst := &tstEngine{
		Engine:     eng,
		col:        col,
		ctrl:       ctrl,
		broker:     brokerMock,
		assets:     assetsMock,
		prices:     pricesMock,
		assetPrice: num.NewUint(10),
		tokenPrice: num.NewUint(2),
	}

	require.NoError(t, col.EnableCollateralToken(ctx, controller, &types.CollateralToken{
		ID:     token,
		Symbol: "USDC",
		Factor: 10000,
		Active: true,
	}))
	assetsMock.EXPECT().Params(asset).DoAndReturn(func(string) (*types.AssetParams, error) {
		return &types.AssetParams{
			Symbol:               asset,
			MinCollateralRatio:   15000,
			LiquidationThreshold: 12000,
			MaxSupply:            num.NewUint(1000000),
			Active:               true,
		}, nil
	}).AnyTimes()
	pricesMock.EXPECT().GetAggregatedPrice(asset).DoAndReturn(func(string) (*types.AggregatedPrice, error) {
		return &types.AggregatedPrice{Asset: asset, Price: tst.assetPrice.Clone(), Time: now}, nil
	}).AnyTimes()
	pricesMock.EXPECT().GetAggregatedPrice("USDC").DoAndReturn(func(string) (*types.AggregatedPrice, error) {
		return &types.AggregatedPrice{Asset: "USDC", Price: tst.tokenPrice.Clone(), Time: now}, nil
	}).AnyTimes()
	pricesMock.EXPECT().IsFrozen(asset).DoAndReturn(func(string) bool {
		return tst.frozen
	}).AnyTimes()
	return tst
}

func (e *tstEngine) Finish() {
	e.ctrl.Finish()
}

// openPosition deposits collateral at the current token price and
// mints the given debt, both while the position is healthy.
func (e *tstEngine) openPosition(t *testing.T, collateralAmt, mintAmt uint64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.col.Deposit(ctx, owner, asset, token, num.NewUint(collateralAmt)))
	require.NoError(t, e.col.Mint(ctx, owner, asset, token, num.NewUint(mintAmt)))
}

func TestLiquidatePosition(t *testing.T) {
	t.Run("partial liquidation restores the minimum ratio exactly", testPartialLiquidation)
	t.Run("deeply underwater positions are closed in full", testFullClose)
	t.Run("healthy positions cannot be liquidated", testNotLiquidatable)
	t.Run("liquidation is rejected while the price is frozen", testLiquidateFrozen)
	t.Run("positions with no debt cannot be liquidated", testNothingMinted)
}

func testPartialLiquidation(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	eng.broker.EXPECT().Send(gomock.Any()).AnyTimes()
	// 11500 collateral at 2 backing 1000 debt at 10, ratio 230%
	eng.openPosition(t, 11500, 1000)

	// the collateral halves, ratio lands at 115%, inside the band where
	// a partial repay can still restore the minimum
	eng.tokenPrice = num.NewUint(1)

	res, err := eng.LiquidatePosition(ctx, liquidator, owner, asset, token)
	require.NoError(t, err)
	assert.False(t, res.Closed)
	// smallest repay restoring 150%: (1.5*10000 - 11500) / (10 * 0.4)
	assert.True(t, res.Repaid.EQ(num.NewUint(875)), "repaid %s", res.Repaid)
	// seized collateral is worth the repaid debt plus the 10% penalty
	assert.True(t, res.Seized.EQ(num.NewUint(9625)), "seized %s", res.Seized)
	// penalty 875, 40% to the insurance fund, the rest to the liquidator
	assert.True(t, res.InsuranceCredit.EQ(num.NewUint(350)))
	assert.True(t, res.LiquidatorReward.EQ(num.NewUint(525)))

	// the survivor sits at exactly 150%
	ratio, defined, err := eng.col.GetCollateralRatio(owner, asset, token)
	require.NoError(t, err)
	assert.True(t, defined)
	assert.True(t, ratio.Equal(num.DecimalFromInt64(15000)), "ratio %s", ratio)
	assert.True(t, eng.col.InsuranceBalance(token).EQ(num.NewUint(350)))

	state, err := eng.Check(ctx, owner, asset, token)
	require.NoError(t, err)
	assert.Equal(t, types.PositionStateHealthy, state)
}

func testFullClose(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	eng.broker.EXPECT().Send(gomock.Any()).AnyTimes()
	eng.openPosition(t, 10500, 1000)

	// ratio lands at 105%, below this no partial repay can get back to
	// 150% once the 10% penalty is paid on the way
	eng.tokenPrice = num.NewUint(1)

	res, err := eng.LiquidatePosition(ctx, liquidator, owner, asset, token)
	require.NoError(t, err)
	assert.True(t, res.Closed)
	assert.True(t, res.Repaid.EQ(num.NewUint(1000)))
	// the full seizure is worth 11000 but only 10500 is there
	assert.True(t, res.Seized.EQ(num.NewUint(10500)))
	assert.True(t, res.InsuranceCredit.EQ(num.NewUint(200)))
	assert.True(t, res.LiquidatorReward.EQ(num.NewUint(300)))

	pos, err := eng.col.Position(owner, asset, token)
	require.NoError(t, err)
	assert.True(t, pos.Minted.IsZero())
	assert.True(t, pos.Collateral.IsZero())

	state, err := eng.Check(ctx, owner, asset, token)
	require.NoError(t, err)
	assert.Equal(t, types.PositionStateClosed, state)
}

func testNotLiquidatable(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	eng.broker.EXPECT().Send(gomock.Any()).AnyTimes()
	eng.openPosition(t, 11500, 1000)

	_, err := eng.LiquidatePosition(ctx, liquidator, owner, asset, token)
	require.ErrorIs(t, err, liquidation.ErrNotLiquidatable)

	// at exactly the threshold the position is still safe
	require.NoError(t, eng.col.Deposit(ctx, owner, asset, token, num.NewUint(500)))
	eng.tokenPrice = num.NewUint(1)
	ratio, _, err := eng.col.GetCollateralRatio(owner, asset, token)
	require.NoError(t, err)
	require.True(t, ratio.Equal(num.DecimalFromInt64(12000)))

	_, err = eng.LiquidatePosition(ctx, liquidator, owner, asset, token)
	require.ErrorIs(t, err, liquidation.ErrNotLiquidatable)
}

func testLiquidateFrozen(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	eng.broker.EXPECT().Send(gomock.Any()).AnyTimes()
	eng.openPosition(t, 11500, 1000)
	eng.tokenPrice = num.NewUint(1)
	eng.frozen = true

	_, err := eng.LiquidatePosition(ctx, liquidator, owner, asset, token)
	require.ErrorIs(t, err, pricing.ErrPriceFrozen)
}

func testNothingMinted(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	eng.broker.EXPECT().Send(gomock.Any()).AnyTimes()
	require.NoError(t, eng.col.Deposit(ctx, owner, asset, token, num.NewUint(1000)))

	_, err := eng.LiquidatePosition(ctx, liquidator, owner, asset, token)
	require.ErrorIs(t, err, liquidation.ErrNothingMinted)
}

func TestCheck(t *testing.T) {
	t.Run("states follow the ratio through the thresholds", testStateTransitions)
	t.Run("state events fire on transitions only", testStateEventsOnTransition)
}

func testStateTransitions(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	eng.broker.EXPECT().Send(gomock.Any()).AnyTimes()
	eng.openPosition(t, 13000, 1000)

	state, err := eng.Check(ctx, owner, asset, token)
	require.NoError(t, err)
	assert.Equal(t, types.PositionStateHealthy, state)

	// collateral halves, 130% sits between the 120% liquidation
	// threshold and the 150% minimum
	eng.tokenPrice = num.NewUint(1)
	state, err = eng.Check(ctx, owner, asset, token)
	require.NoError(t, err)
	assert.Equal(t, types.PositionStateAtRisk, state)

	// the synthetic asset gains, pushing the ratio below 120%
	eng.assetPrice = num.NewUint(11)
	state, err = eng.Check(ctx, owner, asset, token)
	require.NoError(t, err)
	assert.Equal(t, types.PositionStateLiquidating, state)
}

func testStateEventsOnTransition(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	// two ledger movements to open the position
	eng.broker.EXPECT().Send(gomock.Any()).Times(2)
	eng.openPosition(t, 13000, 1000)

	// one state event, repeated checks at the same state are silent
	eng.broker.EXPECT().Send(gomock.Any()).Times(1)
	for i := 0; i < 3; i++ {
		state, err := eng.Check(ctx, owner, asset, token)
		require.NoError(t, err)
		assert.Equal(t, types.PositionStateHealthy, state)
	}

	eng.tokenPrice = num.NewUint(1)
	eng.broker.EXPECT().Send(gomock.Any()).Times(1)
	state, err := eng.Check(ctx, owner, asset, token)
	require.NoError(t, err)
	assert.Equal(t, types.PositionStateAtRisk, state)
}
