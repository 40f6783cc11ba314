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

package collateral_test

import (
	"context"
	"testing"
	"time"

	bmocks "code.helixprotocol.io/helix/core/broker/mocks"
	"code.helixprotocol.io/helix/core/collateral"
	"code.helixprotocol.io/helix/core/collateral/mocks"
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
	asset      = "hBTC"
	token      = "usdc-token"
)

type tstEngine struct {
	*collateral.Engine
	ctrl   *gomock.Controller
	broker *bmocks.MockInterface
	assets *mocks.MockAssets
	prices *mocks.MockPriceEngine
	roles  *roles.Table
	now    time.Time
}

func getTestEngine(t *testing.T) *tstEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	brokerMock := bmocks.NewMockInterface(ctrl)
	assetsMock := mocks.NewMockAssets(ctrl)
	pricesMock := mocks.NewMockPriceEngine(ctrl)
	roleTable := roles.NewTable(controller)

	eng := collateral.New(logging.NewTestLogger(), collateral.NewDefaultConfig(), assetsMock, pricesMock, roleTable, brokerMock)
	now := time.Unix(1700000000, 0)
	eng.OnTick(context.Background(), now)

	tst := &tstEngine{
		Engine: eng,
		ctrl:   ctrl,
		broker: brokerMock,
		assets: assetsMock,
		prices: pricesMock,
		roles:  roleTable,
		now:    now,
	}
	require.NoError(t, eng.EnableCollateralToken(context.Background(), controller, &types.CollateralToken{
		ID:     token,
		Symbol: "USDC",
		Factor: 10000,
		Active: true,
	}))
	return tst
}

func (e *tstEngine) Finish() {
	e.ctrl.Finish()
}

// expectPrices wires the aggregated price lookups the ratio computation
// performs, collateral token at 1 and the synthetic asset at 100.
func (e *tstEngine) expectPrices() {
	e.prices.EXPECT().GetAggregatedPrice("USDC").Return(&types.AggregatedPrice{
		Asset: "USDC",
		Price: num.NewUint(1),
		Time:  e.now,
	}, nil).AnyTimes()
	e.prices.EXPECT().GetAggregatedPrice(asset).Return(&types.AggregatedPrice{
		Asset: asset,
		Price: num.NewUint(100),
		Time:  e.now,
	}, nil).AnyTimes()
}

func (e *tstEngine) expectParams() {
	e.assets.EXPECT().Params(asset).Return(&types.AssetParams{
		Symbol:               asset,
		MinCollateralRatio:   15000,
		LiquidationThreshold: 12000,
		MaxSupply:            num.NewUint(1000000),
		Active:               true,
	}, nil).AnyTimes()
}

func TestDeposit(t *testing.T) {
	t.Run("deposit creates the position and credits collateral", testDepositCredits)
	t.Run("deposit rejects unknown tokens", testDepositUnknownToken)
	t.Run("deposit rejects inactive tokens", testDepositInactiveToken)
	t.Run("deposit rejects zero amounts", testDepositZero)
}

func testDepositCredits(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	eng.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(5000)))

	pos, err := eng.Position(owner, asset, token)
	require.NoError(t, err)
	assert.True(t, pos.Collateral.EQ(num.NewUint(20000)))
	assert.True(t, pos.Minted.IsZero())
}

func testDepositUnknownToken(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()

	err := eng.Deposit(context.Background(), owner, asset, "nope", num.NewUint(100))
	require.ErrorIs(t, err, collateral.ErrUnknownCollateralToken)
}

func testDepositInactiveToken(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	require.NoError(t, eng.EnableCollateralToken(ctx, controller, &types.CollateralToken{
		ID:     "frozen-token",
		Symbol: "FRZ",
		Factor: 8000,
		Active: false,
	}))
	err := eng.Deposit(ctx, owner, asset, "frozen-token", num.NewUint(100))
	require.ErrorIs(t, err, collateral.ErrCollateralTokenInactive)
}

func testDepositZero(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()

	err := eng.Deposit(context.Background(), owner, asset, token, num.UintZero())
	require.ErrorIs(t, err, collateral.ErrInvalidAmount)
}

func TestMint(t *testing.T) {
	t.Run("mint at the exact minimum ratio is allowed", testMintExactRatio)
	t.Run("mint below the minimum ratio is rejected", testMintRatioViolation)
	t.Run("mint is rejected while the price is frozen", testMintFrozen)
	t.Run("mint is bounded by the asset max supply", testMintSupplyCap)
	t.Run("mint against an inactive asset is rejected", testMintAssetInactive)
}

// collateral 15000 at price 1 against 100 minted at price 100 is a
// ratio of exactly 15000 basis points, the configured minimum.
func testMintExactRatio(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectPrices()
	eng.expectParams()
	eng.prices.EXPECT().IsFrozen(asset).Return(false).AnyTimes()

	eng.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	require.NoError(t, eng.Mint(ctx, owner, asset, token, num.NewUint(100)))

	ratio, defined, err := eng.GetCollateralRatio(owner, asset, token)
	require.NoError(t, err)
	assert.True(t, defined)
	assert.True(t, ratio.Equal(num.DecimalFromInt64(15000)))
	assert.True(t, eng.Supply(asset).EQ(num.NewUint(100)))
}

// one unit more of debt puts the floored ratio at 14851, below the
// minimum, and the fractional remainder must not round it back up.
func testMintRatioViolation(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectPrices()
	eng.expectParams()
	eng.prices.EXPECT().IsFrozen(asset).Return(false).AnyTimes()

	eng.broker.EXPECT().Send(gomock.Any()).Times(1)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	err := eng.Mint(ctx, owner, asset, token, num.NewUint(101))
	require.ErrorIs(t, err, collateral.ErrRatioViolation)

	// the rejected mint left the position untouched
	pos, err := eng.Position(owner, asset, token)
	require.NoError(t, err)
	assert.True(t, pos.Minted.IsZero())
	assert.True(t, eng.Supply(asset).IsZero())
}

func testMintFrozen(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectParams()
	eng.prices.EXPECT().IsFrozen(asset).Return(true).Times(1)

	eng.broker.EXPECT().Send(gomock.Any()).Times(1)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	err := eng.Mint(ctx, owner, asset, token, num.NewUint(10))
	require.ErrorIs(t, err, pricing.ErrPriceFrozen)
}

func testMintSupplyCap(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectPrices()
	eng.prices.EXPECT().IsFrozen(asset).Return(false).AnyTimes()
	eng.assets.EXPECT().Params(asset).Return(&types.AssetParams{
		Symbol:               asset,
		MinCollateralRatio:   15000,
		LiquidationThreshold: 12000,
		MaxSupply:            num.NewUint(50),
		Active:               true,
	}, nil).AnyTimes()

	eng.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(1000000)))
	require.NoError(t, eng.Mint(ctx, owner, asset, token, num.NewUint(40)))

	err := eng.Mint(ctx, owner, asset, token, num.NewUint(11))
	require.ErrorIs(t, err, collateral.ErrSupplyExceeded)
	assert.True(t, eng.Supply(asset).EQ(num.NewUint(40)))
}

func testMintAssetInactive(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.assets.EXPECT().Params(asset).Return(&types.AssetParams{
		Symbol:               asset,
		MinCollateralRatio:   15000,
		LiquidationThreshold: 12000,
		MaxSupply:            num.NewUint(1000000),
		Active:               false,
	}, nil).AnyTimes()

	eng.broker.EXPECT().Send(gomock.Any()).Times(1)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	err := eng.Mint(ctx, owner, asset, token, num.NewUint(10))
	require.ErrorIs(t, err, collateral.ErrAssetInactive)
}

func TestWithdraw(t *testing.T) {
	t.Run("withdraw with no debt is unrestricted", testWithdrawNoDebt)
	t.Run("withdraw is bounded by the collateral balance", testWithdrawInsufficient)
	t.Run("withdraw below the minimum ratio is rejected", testWithdrawRatioGuard)
}

func testWithdrawNoDebt(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	eng.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	require.NoError(t, eng.Withdraw(ctx, owner, asset, token, num.NewUint(15000)))

	pos, err := eng.Position(owner, asset, token)
	require.NoError(t, err)
	assert.True(t, pos.Collateral.IsZero())
}

func testWithdrawInsufficient(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	eng.broker.EXPECT().Send(gomock.Any()).Times(1)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(100)))
	err := eng.Withdraw(ctx, owner, asset, token, num.NewUint(101))
	require.ErrorIs(t, err, collateral.ErrInsufficientCollateral)
}

func testWithdrawRatioGuard(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectPrices()
	eng.expectParams()
	eng.prices.EXPECT().IsFrozen(asset).Return(false).AnyTimes()

	// the position sits at exactly the minimum, any withdrawal breaks it
	eng.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	require.NoError(t, eng.Mint(ctx, owner, asset, token, num.NewUint(100)))

	err := eng.Withdraw(ctx, owner, asset, token, num.NewUint(1))
	require.ErrorIs(t, err, collateral.ErrRatioViolation)

	pos, err := eng.Position(owner, asset, token)
	require.NoError(t, err)
	assert.True(t, pos.Collateral.EQ(num.NewUint(15000)))
}

func TestBurn(t *testing.T) {
	t.Run("burn reduces minted debt and supply", testBurnReduces)
	t.Run("burn above the minted balance is rejected", testBurnInsufficient)
}

func testBurnReduces(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectPrices()
	eng.expectParams()
	eng.prices.EXPECT().IsFrozen(asset).Return(false).AnyTimes()

	eng.broker.EXPECT().Send(gomock.Any()).Times(3)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	require.NoError(t, eng.Mint(ctx, owner, asset, token, num.NewUint(100)))
	require.NoError(t, eng.Burn(ctx, owner, asset, token, num.NewUint(60)))

	pos, err := eng.Position(owner, asset, token)
	require.NoError(t, err)
	assert.True(t, pos.Minted.EQ(num.NewUint(40)))
	assert.True(t, eng.Supply(asset).EQ(num.NewUint(40)))
}

func testBurnInsufficient(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectPrices()
	eng.expectParams()
	eng.prices.EXPECT().IsFrozen(asset).Return(false).AnyTimes()

	eng.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	require.NoError(t, eng.Mint(ctx, owner, asset, token, num.NewUint(100)))

	err := eng.Burn(ctx, owner, asset, token, num.NewUint(101))
	require.ErrorIs(t, err, collateral.ErrInsufficientMinted)
}

func TestCollateralRatio(t *testing.T) {
	t.Run("ratio is undefined with no minted debt", testRatioUndefined)
	t.Run("collateral factor scales down the ratio", testRatioFactor)
}

func testRatioUndefined(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()

	eng.broker.EXPECT().Send(gomock.Any()).Times(1)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))

	_, defined, err := eng.GetCollateralRatio(owner, asset, token)
	require.NoError(t, err)
	assert.False(t, defined)

	_, _, err = eng.GetCollateralRatio("nobody", asset, token)
	require.ErrorIs(t, err, collateral.ErrUnknownPosition)
}

func testRatioFactor(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectPrices()
	eng.expectParams()
	eng.prices.EXPECT().IsFrozen(asset).Return(false).AnyTimes()

	// an 80% factor token needs 25% more collateral for the same ratio
	require.NoError(t, eng.EnableCollateralToken(ctx, controller, &types.CollateralToken{
		ID:     "haircut-token",
		Symbol: "USDC",
		Factor: 8000,
		Active: true,
	}))

	eng.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, eng.Deposit(ctx, owner, asset, "haircut-token", num.NewUint(15000)))
	require.NoError(t, eng.Mint(ctx, owner, asset, "haircut-token", num.NewUint(80)))

	ratio, defined, err := eng.GetCollateralRatio(owner, asset, "haircut-token")
	require.NoError(t, err)
	assert.True(t, defined)
	// 15000 * 0.8 / (80 * 100) = 1.5
	assert.True(t, ratio.Equal(num.DecimalFromInt64(15000)))
}

func TestApplyLiquidation(t *testing.T) {
	t.Run("liquidation moves debt, collateral and penalty split", testApplyLiquidation)
	t.Run("liquidation amounts are validated against the position", testApplyLiquidationBounds)
}

func testApplyLiquidation(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectPrices()
	eng.expectParams()
	eng.prices.EXPECT().IsFrozen(asset).Return(false).AnyTimes()

	eng.broker.EXPECT().Send(gomock.Any()).Times(3)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	require.NoError(t, eng.Mint(ctx, owner, asset, token, num.NewUint(100)))

	require.NoError(t, eng.ApplyLiquidation(ctx, owner, asset, token, "liquidator-1",
		num.NewUint(50), num.NewUint(5500), num.NewUint(200), num.NewUint(300)))

	pos, err := eng.Position(owner, asset, token)
	require.NoError(t, err)
	assert.True(t, pos.Minted.EQ(num.NewUint(50)))
	assert.True(t, pos.Collateral.EQ(num.NewUint(9500)))
	assert.True(t, eng.Supply(asset).EQ(num.NewUint(50)))
	assert.True(t, eng.InsuranceBalance(token).EQ(num.NewUint(200)))
}

func testApplyLiquidationBounds(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectPrices()
	eng.expectParams()
	eng.prices.EXPECT().IsFrozen(asset).Return(false).AnyTimes()

	eng.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	require.NoError(t, eng.Mint(ctx, owner, asset, token, num.NewUint(100)))

	err := eng.ApplyLiquidation(ctx, owner, asset, token, "liquidator-1",
		num.NewUint(101), num.NewUint(100), num.UintZero(), num.UintZero())
	require.ErrorIs(t, err, collateral.ErrInsufficientMinted)

	err = eng.ApplyLiquidation(ctx, owner, asset, token, "liquidator-1",
		num.NewUint(50), num.NewUint(15001), num.UintZero(), num.UintZero())
	require.ErrorIs(t, err, collateral.ErrInsufficientCollateral)

	// nothing moved
	pos, err := eng.Position(owner, asset, token)
	require.NoError(t, err)
	assert.True(t, pos.Minted.EQ(num.NewUint(100)))
	assert.True(t, pos.Collateral.EQ(num.NewUint(15000)))
}

func TestInsuranceFund(t *testing.T) {
	t.Run("insurance withdrawal requires the controller", testInsuranceWithdrawUnauthorized)
	t.Run("insurance withdrawal is bounded by the fund balance", testInsuranceWithdrawBounds)
}

func testInsuranceWithdrawUnauthorized(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()

	err := eng.WithdrawInsurance(context.Background(), "random-party", token, num.NewUint(1))
	require.ErrorIs(t, err, roles.ErrUnauthorized)
}

func testInsuranceWithdrawBounds(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.Finish()
	ctx := context.Background()
	eng.expectPrices()
	eng.expectParams()
	eng.prices.EXPECT().IsFrozen(asset).Return(false).AnyTimes()

	eng.broker.EXPECT().Send(gomock.Any()).Times(4)
	require.NoError(t, eng.Deposit(ctx, owner, asset, token, num.NewUint(15000)))
	require.NoError(t, eng.Mint(ctx, owner, asset, token, num.NewUint(100)))
	require.NoError(t, eng.ApplyLiquidation(ctx, owner, asset, token, "liquidator-1",
		num.NewUint(50), num.NewUint(5500), num.NewUint(200), num.NewUint(300)))

	err := eng.WithdrawInsurance(ctx, controller, token, num.NewUint(201))
	require.ErrorIs(t, err, collateral.ErrInsufficientInsuranceBalance)

	require.NoError(t, eng.WithdrawInsurance(ctx, controller, token, num.NewUint(200)))
	assert.True(t, eng.InsuranceBalance(token).IsZero())
}
