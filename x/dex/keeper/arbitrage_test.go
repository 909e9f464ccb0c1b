package keeper_test

import (
	"fmt"

	"cosmossdk.io/math"

	keepertest "github.com/paw-chain/sdex/testutil/keeper"
	"github.com/paw-chain/sdex/x/dex/types"
)

func (suite *KeeperTestSuite) arbParams() types.RoutingParams {
	params, err := suite.keeper.GetParams(suite.ctx)
	suite.Require().NoError(err)
	return types.RoutingParams{
		MaxHops:               params.MaxHops + 2,
		DynamicCandidateLimit: params.DynamicCandidateLimit,
	}.WithExtraCandidates(params.FixedCandidates...).WithPriceLimit(types.OnePrice())
}

// openCrossedBook opens a native/gn book where buying gn and selling it
// back returns twice the native input.
func (suite *KeeperTestSuite) openCrossedBook() (cheapGn, richNative types.PositionID) {
	cheapGn = suite.open(types.NewDirectedTradingPair(native, gn), 2, 1, 0, 100)
	richNative = suite.open(types.NewDirectedTradingPair(gn, native), 1, 1, 0, 1_000)
	return cheapGn, richNative
}

func (suite *KeeperTestSuite) TestArbitrage_BurnsProfit() {
	cheapGn, richNative := suite.openCrossedBook()

	burned, err := suite.keeper.Arbitrage(suite.ctx, suite.bc, native, suite.arbParams(), types.DefaultMaxExecutionBudget)
	suite.Require().NoError(err)
	suite.Require().NotNil(burned)
	suite.Require().Equal(native, burned.AssetID)
	suite.Require().Equal("50", burned.Amount.String())

	total, err := suite.keeper.GetBurnedTotal(suite.ctx, native)
	suite.Require().NoError(err)
	suite.Require().Equal("50", total.String())

	suite.Require().True(suite.reserveOf(cheapGn, gn).IsZero())
	suite.Require().Equal("50", suite.reserveOf(cheapGn, native).String())
	suite.Require().Equal("100", suite.reserveOf(richNative, gn).String())
	suite.Require().Equal("900", suite.reserveOf(richNative, native).String())

	// The flash loan is fully repaid: only the positions' holdings remain.
	balance, err := suite.keeper.GetValueBalance(suite.ctx, native)
	suite.Require().NoError(err)
	suite.Require().Equal("950", balance.String())

	execution, found, err := suite.keeper.GetArbExecution(suite.ctx, suite.bc.Height)
	suite.Require().NoError(err)
	suite.Require().True(found)
	suite.Require().Equal("50", execution.Input.Amount.String())
	suite.Require().Equal("100", execution.Output.Amount.String())
	suite.Require().True(suite.hasEvent(types.EventTypeArbitrage))
	suite.requireInvariants()

	// Nothing is left to arbitrage.
	burned, err = suite.keeper.Arbitrage(suite.ctx, suite.bc, native, suite.arbParams(), types.DefaultMaxExecutionBudget)
	suite.Require().NoError(err)
	suite.Require().Nil(burned)
	total, err = suite.keeper.GetBurnedTotal(suite.ctx, native)
	suite.Require().NoError(err)
	suite.Require().Equal("50", total.String())
}

func (suite *KeeperTestSuite) TestArbitrage_NoCycle() {
	// Buying gn and selling it back loses value.
	suite.open(types.NewDirectedTradingPair(native, gn), 1, 1, 0, 100)
	suite.open(types.NewDirectedTradingPair(gn, native), 1, 2, 0, 100)

	balance, err := suite.keeper.GetValueBalance(suite.ctx, native)
	suite.Require().NoError(err)

	burned, err := suite.keeper.Arbitrage(suite.ctx, suite.bc, native, suite.arbParams(), types.DefaultMaxExecutionBudget)
	suite.Require().NoError(err)
	suite.Require().Nil(burned)

	after, err := suite.keeper.GetValueBalance(suite.ctx, native)
	suite.Require().NoError(err)
	suite.Require().True(balance.Equal(after))

	_, found, err := suite.keeper.GetArbExecution(suite.ctx, suite.bc.Height)
	suite.Require().NoError(err)
	suite.Require().False(found)
	suite.Require().True(math.ZeroInt().Equal(suite.mustBurned(native)))
}

func (suite *KeeperTestSuite) mustBurned(asset types.AssetID) math.Int {
	total, err := suite.keeper.GetBurnedTotal(suite.ctx, asset)
	suite.Require().NoError(err)
	return total
}

func (suite *KeeperTestSuite) TestArbitrage_ThreeHopCycle() {
	a := keepertest.TestAsset("cycle-a")
	b := keepertest.TestAsset("cycle-b")
	// native buys two a, a trades one for one into b, and b back into native.
	toA := suite.open(types.NewDirectedTradingPair(native, a), 2, 1, 0, 100)
	toB := suite.open(types.NewDirectedTradingPair(a, b), 1, 1, 0, 100)
	toNative := suite.open(types.NewDirectedTradingPair(b, native), 1, 1, 0, 1_000)

	burned, err := suite.keeper.Arbitrage(suite.ctx, suite.bc, native, suite.arbParams(), types.DefaultMaxExecutionBudget)
	suite.Require().NoError(err)
	suite.Require().NotNil(burned)
	suite.Require().Equal("50", burned.Amount.String())

	suite.Require().Equal("50", suite.reserveOf(toA, native).String())
	suite.Require().True(suite.reserveOf(toA, a).IsZero())
	suite.Require().Equal("100", suite.reserveOf(toB, a).String())
	suite.Require().True(suite.reserveOf(toB, b).IsZero())
	suite.Require().Equal("100", suite.reserveOf(toNative, b).String())
	suite.Require().Equal("900", suite.reserveOf(toNative, native).String())

	execution, found, err := suite.keeper.GetArbExecution(suite.ctx, suite.bc.Height)
	suite.Require().NoError(err)
	suite.Require().True(found)
	suite.Require().Len(execution.Traces, 1)
	suite.Require().Len(execution.Traces[0], 4)
	suite.requireInvariants()

	burned, err = suite.keeper.Arbitrage(suite.ctx, suite.bc, native, suite.arbParams(), types.DefaultMaxExecutionBudget)
	suite.Require().NoError(err)
	suite.Require().Nil(burned)
	suite.Require().Equal("50", suite.mustBurned(native).String())
}

// openDisjointCycles opens n native round trips through distinct assets,
// each worth 50 native of profit and each drained by a single route fill.
func (suite *KeeperTestSuite) openDisjointCycles(n int) {
	for i := 0; i < n; i++ {
		x := keepertest.TestAsset(fmt.Sprintf("loop-%d", i))
		suite.open(types.NewDirectedTradingPair(native, x), 2, 1, 0, 100)
		suite.open(types.NewDirectedTradingPair(x, native), 1, 1, 0, 1_000)
	}
}

func (suite *KeeperTestSuite) TestArbitrage_BudgetLimitsSingleRun() {
	suite.openDisjointCycles(3)

	burned, err := suite.keeper.Arbitrage(suite.ctx, suite.bc, native, suite.arbParams(), 1)
	suite.Require().NoError(err)
	suite.Require().NotNil(burned)
	suite.Require().Equal("50", burned.Amount.String())

	// Profit is left behind for the next run.
	burned, err = suite.keeper.Arbitrage(suite.ctx, suite.bc, native, suite.arbParams(), 1)
	suite.Require().NoError(err)
	suite.Require().NotNil(burned)
	suite.Require().Equal("100", suite.mustBurned(native).String())

	execution, found, err := suite.keeper.GetArbExecution(suite.ctx, suite.bc.Height)
	suite.Require().NoError(err)
	suite.Require().True(found)
	suite.Require().Equal("100", execution.Input.Amount.String())
	suite.Require().Equal("200", execution.Output.Amount.String())
	suite.Require().Len(execution.Traces, 2)
	suite.requireInvariants()
}
