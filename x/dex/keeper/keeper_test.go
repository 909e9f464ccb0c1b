package keeper_test

import (
	"encoding/json"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/paw-chain/sdex/testutil/keeper"
	"github.com/paw-chain/sdex/x/dex/keeper"
	"github.com/paw-chain/sdex/x/dex/types"
)

var (
	gm     = keepertest.TestAsset("gm")
	gn     = keepertest.TestAsset("gn")
	native = types.AssetIDFromDenom(types.DefaultNativeDenom)
)

type KeeperTestSuite struct {
	suite.Suite
	keeper *keeper.Keeper
	ctx    sdk.Context
	bc     *types.BlockContext
}

func (suite *KeeperTestSuite) SetupTest() {
	suite.keeper, suite.ctx = keepertest.DexKeeper(suite.T())
	suite.bc = suite.keeper.BeginBlocker(suite.ctx)
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

// open opens a zero-fee position on pair and returns its id.
func (suite *KeeperTestSuite) open(pair types.DirectedTradingPair, p, q, reserveStart, reserveEnd int64) types.PositionID {
	return keepertest.OpenTestPosition(suite.T(), suite.keeper, suite.ctx, suite.bc, pair, 0,
		math.NewInt(p), math.NewInt(q), math.NewInt(reserveStart), math.NewInt(reserveEnd))
}

func (suite *KeeperTestSuite) position(id types.PositionID) types.Position {
	position, err := suite.keeper.GetPosition(suite.ctx, id)
	suite.Require().NoError(err)
	return position
}

func (suite *KeeperTestSuite) reserveOf(id types.PositionID, asset types.AssetID) math.Int {
	amount, ok := suite.position(id).ReservesFor(asset)
	suite.Require().True(ok)
	return amount
}

func (suite *KeeperTestSuite) requireInvariants() {
	msg, broken := keeper.AllInvariants(*suite.keeper)(suite.ctx)
	suite.Require().False(broken, msg)
}

func (suite *KeeperTestSuite) setParams(mutate func(*types.Params)) {
	params, err := suite.keeper.GetParams(suite.ctx)
	suite.Require().NoError(err)
	mutate(&params)
	suite.Require().NoError(suite.keeper.SetParams(suite.ctx, params))
}

func (suite *KeeperTestSuite) hasEvent(eventType string) bool {
	for _, ev := range suite.ctx.EventManager().Events() {
		if ev.Type == eventType {
			return true
		}
	}
	return false
}

// sellFlow is the swap flow selling amount of sell on pair.
func sellFlow(pair types.TradingPair, sell types.AssetID, amount int64) types.SwapFlow {
	if sell == pair.Asset1 {
		return types.NewSwapFlow(math.NewInt(amount), math.ZeroInt())
	}
	return types.NewSwapFlow(math.ZeroInt(), math.NewInt(amount))
}

// received returns what a batch paid out of asset: the output bought with
// the other asset and the unfilled input of asset.
func received(output types.BatchSwapOutputData, asset types.AssetID) (lambda, unfilled math.Int) {
	if asset == output.TradingPair.Asset1 {
		return output.Lambda1, output.Unfilled1
	}
	return output.Lambda2, output.Unfilled2
}

func mustPrice(t require.TestingT, num, den int64) types.Price {
	price, err := types.NewPrice(math.NewInt(num), math.NewInt(den))
	require.NoError(t, err)
	return price
}

func mustJSON(t require.TestingT, v any) string {
	bz, err := json.Marshal(v)
	require.NoError(t, err)
	return string(bz)
}

func TestParamsDefaultWhenUnset(t *testing.T) {
	k, ctx := keepertest.DexKeeper(t)

	params, err := k.GetParams(ctx)
	require.NoError(t, err)
	require.Equal(t, types.DefaultParams(), params)

	params.MaxHops = 0
	require.ErrorIs(t, k.SetParams(ctx, params), types.ErrInvalidParams)
}

func TestExecutionBudget(t *testing.T) {
	budget := keeper.NewExecutionBudget(2)
	require.False(t, budget.Exhausted())
	budget.Increment()
	require.False(t, budget.Exhausted())
	budget.Increment()
	require.True(t, budget.Exhausted())
	require.Equal(t, uint32(2), budget.Used())

	require.True(t, keeper.NewExecutionBudget(0).Exhausted())
}
