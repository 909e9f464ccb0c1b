package keeper_test

import (
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/paw-chain/sdex/x/dex/types"
)

func (suite *KeeperTestSuite) TestSimulateTrade() {
	id := suite.open(types.NewDirectedTradingPair(gm, gn), 2, 1, 1_000, 0)
	balanceGn, err := suite.keeper.GetValueBalance(suite.ctx, gn)
	suite.Require().NoError(err)

	trade, err := suite.keeper.SimulateTrade(suite.ctx, types.NewValue(sdkmath.NewInt(100), gn), gm)
	suite.Require().NoError(err)
	suite.Require().Equal("100", trade.Execution.Input.Amount.String())
	suite.Require().Equal("50", trade.Execution.Output.Amount.String())
	suite.Require().Equal(gm, trade.Execution.Output.AssetID)
	suite.Require().True(trade.Unfilled.Amount.IsZero())
	suite.Require().Len(trade.Execution.Fills, 1)

	// Nothing was committed.
	suite.Require().Equal("1000", suite.reserveOf(id, gm).String())
	suite.Require().True(suite.reserveOf(id, gn).IsZero())
	after, err := suite.keeper.GetValueBalance(suite.ctx, gn)
	suite.Require().NoError(err)
	suite.Require().True(balanceGn.Equal(after))
	_, found, err := suite.keeper.GetSwapExecution(suite.ctx, suite.bc.Height, types.NewDirectedTradingPair(gn, gm))
	suite.Require().NoError(err)
	suite.Require().False(found)
	suite.requireInvariants()

	// Larger than the book: the rest comes back unfilled.
	trade, err = suite.keeper.SimulateTrade(suite.ctx, types.NewValue(sdkmath.NewInt(2_500), gn), gm)
	suite.Require().NoError(err)
	suite.Require().Equal("1000", trade.Execution.Output.Amount.String())
	suite.Require().Equal("500", trade.Unfilled.Amount.String())
}

func (suite *KeeperTestSuite) TestSimulateTrade_NoRoute() {
	input := types.NewValue(sdkmath.NewInt(10), gm)
	trade, err := suite.keeper.SimulateTrade(suite.ctx, input, gn)
	suite.Require().NoError(err)
	suite.Require().True(trade.Execution.IsEmpty())
	suite.Require().True(trade.Execution.Output.Amount.IsZero())
	suite.Require().Equal(gn, trade.Execution.Output.AssetID)
	suite.Require().Equal(input, trade.Unfilled)
}

func (suite *KeeperTestSuite) TestSimulateTrade_Rejects() {
	_, err := suite.keeper.SimulateTrade(suite.ctx, types.NewValue(sdkmath.NewInt(10), gm), gm)
	suite.Require().ErrorIs(err, types.ErrInvalidRoute)

	_, err = suite.keeper.SimulateTrade(suite.ctx, types.NewValue(sdkmath.NewInt(-1), gm), gn)
	suite.Require().ErrorIs(err, types.ErrInvalidAmount)

	_, err = suite.keeper.SimulateTrade(suite.ctx, types.NewValue(types.MaxReserveAmount.AddRaw(1), gm), gn)
	suite.Require().ErrorIs(err, types.ErrInvalidAmount)
}

func (suite *KeeperTestSuite) TestSimulateSingleHopTrade() {
	// native reaches gm only through gn.
	suite.open(types.NewDirectedTradingPair(native, gn), 1, 1, 0, 100)
	suite.open(types.NewDirectedTradingPair(gn, gm), 1, 1, 0, 100)
	input := types.NewValue(sdkmath.NewInt(10), native)

	trade, err := suite.keeper.SimulateTrade(suite.ctx, input, gm)
	suite.Require().NoError(err)
	suite.Require().Equal("10", trade.Execution.Output.Amount.String())
	suite.Require().Len(trade.Execution.Traces, 1)
	suite.Require().Len(trade.Execution.Traces[0], 3)

	trade, err = suite.keeper.SimulateSingleHopTrade(suite.ctx, input, gm)
	suite.Require().NoError(err)
	suite.Require().True(trade.Execution.IsEmpty())
	suite.Require().Equal(input, trade.Unfilled)

	trade, err = suite.keeper.SimulateSingleHopTrade(suite.ctx, input, gn)
	suite.Require().NoError(err)
	suite.Require().Equal("10", trade.Execution.Output.Amount.String())
}

func (suite *KeeperTestSuite) TestSwapExecutions_Range() {
	pair := types.MustNewTradingPair(gm, gn)
	suite.open(types.NewDirectedTradingPair(gm, gn), 1, 1, 1_000, 0)
	suite.open(types.NewDirectedTradingPair(gn, gm), 1, 1, 1_000, 0)

	suite.settle(pair, sellFlow(pair, gn, 100))
	first := suite.bc.Height

	suite.ctx = suite.ctx.WithBlockHeight(int64(first) + 2)
	suite.bc = suite.keeper.BeginBlocker(suite.ctx)
	suite.settle(pair, sellFlow(pair, gm, 40))
	second := suite.bc.Height

	all, err := suite.keeper.SwapExecutions(suite.ctx, 0, math.MaxUint64, nil)
	suite.Require().NoError(err)
	suite.Require().Len(all, 2)
	suite.Require().Equal(first, all[0].Height)
	suite.Require().Equal(types.NewDirectedTradingPair(gn, gm), all[0].Pair)
	suite.Require().Equal("100", all[0].Execution.Input.Amount.String())
	suite.Require().Equal(second, all[1].Height)
	suite.Require().Equal(types.NewDirectedTradingPair(gm, gn), all[1].Pair)
	suite.Require().Equal("40", all[1].Execution.Output.Amount.String())

	later, err := suite.keeper.SwapExecutions(suite.ctx, first+1, second, nil)
	suite.Require().NoError(err)
	suite.Require().Len(later, 1)
	suite.Require().Equal(second, later[0].Height)

	dir := types.NewDirectedTradingPair(gn, gm)
	filtered, err := suite.keeper.SwapExecutions(suite.ctx, 0, math.MaxUint64, &dir)
	suite.Require().NoError(err)
	suite.Require().Len(filtered, 1)
	suite.Require().Equal(first, filtered[0].Height)

	none, err := suite.keeper.SwapExecutions(suite.ctx, second, first, nil)
	suite.Require().NoError(err)
	suite.Require().Empty(none)
}

func (suite *KeeperTestSuite) TestArbExecutions_Range() {
	suite.openCrossedBook()
	burned, err := suite.keeper.Arbitrage(suite.ctx, suite.bc, native, suite.arbParams(), types.DefaultMaxExecutionBudget)
	suite.Require().NoError(err)
	suite.Require().NotNil(burned)

	all, err := suite.keeper.ArbExecutions(suite.ctx, 0, math.MaxUint64)
	suite.Require().NoError(err)
	suite.Require().Len(all, 1)
	suite.Require().Equal(suite.bc.Height, all[0].Height)
	suite.Require().Equal("50", all[0].Execution.Input.Amount.String())
	suite.Require().Equal("100", all[0].Execution.Output.Amount.String())

	after, err := suite.keeper.ArbExecutions(suite.ctx, suite.bc.Height+1, suite.bc.Height+10)
	suite.Require().NoError(err)
	suite.Require().Empty(after)
}
