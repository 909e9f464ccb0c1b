package keeper_test

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/sdex/x/dex/keeper"
	"github.com/paw-chain/sdex/x/dex/types"
)

func (suite *KeeperTestSuite) TestOpenPosition() {
	dir := types.NewDirectedTradingPair(gm, gn)
	id := suite.open(dir, 2, 1, 1_000, 0)

	position := suite.position(id)
	suite.Require().True(position.State.IsOpened())
	suite.Require().Equal(id, position.ID())

	balance, err := suite.keeper.GetValueBalance(suite.ctx, gm)
	suite.Require().NoError(err)
	suite.Require().Equal("1000", balance.String())
	total, err := suite.keeper.GetAggregateReserves(suite.ctx, gm)
	suite.Require().NoError(err)
	suite.Require().Equal("1000", total.String())

	pair := position.Phi.Pair
	suite.Require().Contains(suite.bc.ActivePairs(), pair)
	suite.Require().Contains(suite.bc.RecentlyAccessedAssets(), gm)
	suite.Require().True(suite.hasEvent(types.EventTypePositionOpen))
	suite.Require().True(suite.hasEvent(types.EventTypeVCBCredit))
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestOpenPosition_Rejects() {
	dir := types.NewDirectedTradingPair(gm, gn)
	position, err := types.NewPosition(types.PositionNonce{1}, dir, 0,
		math.OneInt(), math.OneInt(), types.NewReserves(math.NewInt(10), math.ZeroInt()))
	suite.Require().NoError(err)

	_, err = suite.keeper.OpenPosition(suite.ctx, suite.bc, position)
	suite.Require().NoError(err)
	_, err = suite.keeper.OpenPosition(suite.ctx, suite.bc, position)
	suite.Require().ErrorIs(err, types.ErrDuplicatePosition)

	empty, err := types.NewPosition(types.PositionNonce{2}, dir, 0,
		math.OneInt(), math.OneInt(), types.ZeroReserves())
	suite.Require().NoError(err)
	_, err = suite.keeper.OpenPosition(suite.ctx, suite.bc, empty)
	suite.Require().ErrorIs(err, types.ErrInvalidPosition)

	closed := position
	closed.Nonce = types.PositionNonce{3}
	closed.State = types.ClosedState()
	_, err = suite.keeper.OpenPosition(suite.ctx, suite.bc, closed)
	suite.Require().ErrorIs(err, types.ErrInvalidPosition)
}

func (suite *KeeperTestSuite) TestOpenPosition_WithoutBlockContext() {
	position, err := types.NewPositionWithRand(nil, types.NewDirectedTradingPair(gm, gn), 0,
		math.OneInt(), math.OneInt(), types.NewReserves(math.NewInt(10), math.ZeroInt()))
	suite.Require().NoError(err)

	id, err := suite.keeper.OpenPosition(suite.ctx, nil, position)
	suite.Require().NoError(err)
	suite.Require().True(suite.position(id).State.IsOpened())
}

func (suite *KeeperTestSuite) TestCloseAndWithdraw() {
	dir := types.NewDirectedTradingPair(gm, gn)
	id := suite.open(dir, 1, 1, 300, 200)

	_, _, err := suite.keeper.WithdrawPosition(suite.ctx, id)
	suite.Require().ErrorIs(err, types.ErrPositionNotClosed)

	suite.Require().NoError(suite.keeper.ClosePosition(suite.ctx, id))
	suite.Require().Equal(types.ClosedState(), suite.position(id).State)
	suite.Require().ErrorIs(suite.keeper.ClosePosition(suite.ctx, id), types.ErrPositionNotOpen)

	// Closed positions keep their reserves but no longer trade.
	_, found, err := suite.keeper.BestPosition(suite.ctx, dir)
	suite.Require().NoError(err)
	suite.Require().False(found)
	suite.Require().Equal("300", suite.reserveOf(id, gm).String())

	reserves, state, err := suite.keeper.WithdrawPosition(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Require().Equal(types.WithdrawnState(0), state)
	gmOut, gnOut := reserves.R1, reserves.R2
	if suite.position(id).Phi.Pair.Asset1 != gm {
		gmOut, gnOut = gnOut, gmOut
	}
	suite.Require().Equal("300", gmOut.String())
	suite.Require().Equal("200", gnOut.String())
	suite.Require().True(suite.position(id).Reserves.IsZero())

	for _, asset := range []types.AssetID{gm, gn} {
		balance, err := suite.keeper.GetValueBalance(suite.ctx, asset)
		suite.Require().NoError(err)
		suite.Require().True(balance.IsZero())
	}

	// Withdrawing again advances the sequence and pays nothing.
	reserves, state, err = suite.keeper.WithdrawPosition(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Require().Equal(types.WithdrawnState(1), state)
	suite.Require().True(reserves.IsZero())
	suite.Require().True(suite.hasEvent(types.EventTypePositionWithdraw))
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestClosePosition_NotFound() {
	suite.Require().ErrorIs(suite.keeper.ClosePosition(suite.ctx, types.PositionID{7}), types.ErrPositionNotFound)
	_, err := suite.keeper.PositionByID(suite.ctx, types.PositionID{7})
	suite.Require().ErrorIs(err, types.ErrPositionNotFound)
	suite.Require().ErrorIs(suite.keeper.QueueClosePosition(suite.ctx, suite.bc, types.PositionID{7}), types.ErrPositionNotFound)
}

func (suite *KeeperTestSuite) TestQueuedClose() {
	dir := types.NewDirectedTradingPair(gm, gn)
	queued := suite.open(dir, 1, 1, 0, 100)
	closedEarly := suite.open(dir, 1, 2, 0, 100)

	suite.Require().NoError(suite.keeper.QueueClosePosition(suite.ctx, suite.bc, queued))
	suite.Require().NoError(suite.keeper.QueueClosePosition(suite.ctx, suite.bc, closedEarly))
	suite.Require().True(suite.position(queued).State.IsOpened())

	suite.Require().NoError(suite.keeper.ClosePosition(suite.ctx, closedEarly))
	suite.Require().NoError(suite.keeper.CloseQueuedPositions(suite.ctx, suite.bc))

	suite.Require().Equal(types.ClosedState(), suite.position(queued).State)
	suite.Require().Equal(types.ClosedState(), suite.position(closedEarly).State)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestEviction() {
	suite.setParams(func(p *types.Params) { p.MaxPositionsPerPair = 2 })
	dir := types.NewDirectedTradingPair(gm, gn)
	queue := types.NewDirectedTradingPair(gn, gm)

	shallow := suite.open(dir, 1, 1, 0, 10)
	middle := suite.open(dir, 1, 1, 0, 20)
	deep := suite.open(dir, 1, 1, 0, 30)

	suite.Require().Equal(types.ClosedState(), suite.position(shallow).State)
	suite.Require().True(suite.position(middle).State.IsOpened())
	suite.Require().True(suite.position(deep).State.IsOpened())
	suite.Require().True(suite.hasEvent(types.EventTypePositionEvicted))

	ids, err := keeper.EvictionQueueForTest(suite.keeper, suite.ctx, queue)
	suite.Require().NoError(err)
	suite.Require().Equal([]types.PositionID{middle, deep}, ids)

	// Inventory of the other asset is counted separately.
	other := suite.open(dir, 1, 1, 5, 0)
	suite.Require().True(suite.position(other).State.IsOpened())
	suite.Require().True(suite.position(middle).State.IsOpened())

	ids, err = keeper.EvictionQueueForTest(suite.keeper, suite.ctx, dir)
	suite.Require().NoError(err)
	suite.Require().Equal([]types.PositionID{other}, ids)

	evicted, err := suite.keeper.EvictPositions(suite.ctx, suite.bc)
	suite.Require().NoError(err)
	suite.Require().Empty(evicted)
	suite.requireInvariants()
}

// The bound applies to each direction: a pair holds up to two positions per
// slot, and a position deep in both assets displaces one from each side.
func (suite *KeeperTestSuite) TestEviction_BothDirections() {
	suite.setParams(func(p *types.Params) { p.MaxPositionsPerPair = 1 })
	dir := types.NewDirectedTradingPair(gm, gn)

	sellsGn := suite.open(dir, 1, 1, 0, 10)
	sellsGm := suite.open(dir, 1, 1, 5, 0)
	suite.Require().True(suite.position(sellsGn).State.IsOpened())
	suite.Require().True(suite.position(sellsGm).State.IsOpened())

	both := suite.open(dir, 1, 1, 20, 20)
	suite.Require().True(suite.position(both).State.IsOpened())
	suite.Require().Equal(types.ClosedState(), suite.position(sellsGn).State)
	suite.Require().Equal(types.ClosedState(), suite.position(sellsGm).State)

	for _, d := range []types.DirectedTradingPair{dir, dir.Flip()} {
		ids, err := keeper.EvictionQueueForTest(suite.keeper, suite.ctx, d)
		suite.Require().NoError(err)
		suite.Require().Equal([]types.PositionID{both}, ids)
	}
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestPriceIndexOrder() {
	dir := types.NewDirectedTradingPair(gm, gn)
	expensive := suite.open(dir, 1, 3, 0, 100)
	middle := suite.open(dir, 1, 2, 0, 100)
	cheap := suite.open(dir, 2, 1, 0, 100)
	empty := suite.open(dir, 4, 1, 100, 0)

	positions, err := suite.keeper.PositionsByPrice(suite.ctx, dir, 0)
	suite.Require().NoError(err)
	suite.Require().Len(positions, 3)
	suite.Require().Equal(cheap, positions[0].ID())
	suite.Require().Equal(middle, positions[1].ID())
	suite.Require().Equal(expensive, positions[2].ID())

	limited, err := suite.keeper.PositionsByPrice(suite.ctx, dir, 2)
	suite.Require().NoError(err)
	suite.Require().Len(limited, 2)

	// The position holding only gm quotes the other direction.
	best, found, err := suite.keeper.BestPosition(suite.ctx, dir.Flip())
	suite.Require().NoError(err)
	suite.Require().True(found)
	suite.Require().Equal(empty, best.ID())

	pair, err := dir.ToCanonical()
	suite.Require().NoError(err)
	forward, backward, err := suite.keeper.Spread(suite.ctx, pair)
	suite.Require().NoError(err)
	sell := forward
	if pair.Forward() != dir {
		sell = backward
	}
	suite.Require().NotNil(sell)
	suite.Require().Zero(sell.Cmp(mustPrice(suite.T(), 1, 2)))

	opened, err := suite.keeper.PositionsForPair(suite.ctx, pair, true)
	suite.Require().NoError(err)
	suite.Require().Len(opened, 4)
	suite.Require().NoError(suite.keeper.ClosePosition(suite.ctx, middle))
	opened, err = suite.keeper.PositionsForPair(suite.ctx, pair, true)
	suite.Require().NoError(err)
	suite.Require().Len(opened, 3)
	all, err := suite.keeper.PositionsForPair(suite.ctx, pair, false)
	suite.Require().NoError(err)
	suite.Require().Len(all, 4)
}

func (suite *KeeperTestSuite) TestFullFeePositionIsNotIndexed() {
	dir := types.NewDirectedTradingPair(gm, gn)
	id := suite.openWithFee(dir, types.MaxFeeBps)

	suite.Require().True(suite.position(id).State.IsOpened())
	_, found, err := suite.keeper.BestPosition(suite.ctx, dir)
	suite.Require().NoError(err)
	suite.Require().False(found)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) openWithFee(dir types.DirectedTradingPair, fee uint32) types.PositionID {
	position, err := types.NewPositionWithRand(nil, dir, fee, math.OneInt(), math.OneInt(),
		types.NewReserves(math.ZeroInt(), math.NewInt(100)))
	suite.Require().NoError(err)
	id, err := suite.keeper.OpenPosition(suite.ctx, suite.bc, position)
	suite.Require().NoError(err)
	return id
}

func (suite *KeeperTestSuite) TestAvailableLiquidity() {
	gx := types.AssetIDFromDenom("gx")
	first := suite.open(types.NewDirectedTradingPair(gm, gn), 1, 1, 0, 10)
	suite.open(types.NewDirectedTradingPair(gm, gn), 1, 1, 0, 20)

	liquidity, err := suite.keeper.AvailableLiquidity(suite.ctx, gm, gn)
	suite.Require().NoError(err)
	suite.Require().Equal("30", liquidity.String())

	deep := suite.open(types.NewDirectedTradingPair(gm, gx), 1, 1, 0, 100)
	assets, err := suite.keeper.OrderedRoutableAssets(suite.ctx, gm, 10, nil)
	suite.Require().NoError(err)
	suite.Require().Equal([]types.AssetID{gx, gn}, assets)

	assets, err = suite.keeper.OrderedRoutableAssets(suite.ctx, gm, 1, nil)
	suite.Require().NoError(err)
	suite.Require().Equal([]types.AssetID{gx}, assets)

	candidates, err := suite.keeper.CandidateSet(suite.ctx, gm, []types.AssetID{native, gn}, 10)
	suite.Require().NoError(err)
	suite.Require().Equal([]types.AssetID{native, gn, gx}, candidates)

	suite.Require().NoError(suite.keeper.ClosePosition(suite.ctx, deep))
	assets, err = suite.keeper.OrderedRoutableAssets(suite.ctx, gm, 10, nil)
	suite.Require().NoError(err)
	suite.Require().Equal([]types.AssetID{gn}, assets)

	suite.Require().NoError(suite.keeper.ClosePosition(suite.ctx, first))
	liquidity, err = suite.keeper.AvailableLiquidity(suite.ctx, gm, gn)
	suite.Require().NoError(err)
	suite.Require().Equal("20", liquidity.String())

	// Nothing is routable in the opposite direction.
	reverse, err := suite.keeper.OrderedRoutableAssets(suite.ctx, gn, 10, nil)
	suite.Require().NoError(err)
	suite.Require().Empty(reverse)
}

func (suite *KeeperTestSuite) TestValueCircuitBreaker() {
	suite.Require().NoError(keeper.VCBCreditForTest(suite.keeper, suite.ctx, types.NewValue(math.NewInt(10), gm)))

	err := keeper.VCBDebitForTest(suite.keeper, suite.ctx, types.NewValue(math.NewInt(11), gm))
	suite.Require().ErrorIs(err, types.ErrValueCircuitBreaker)
	suite.Require().True(types.IsFatal(err))

	suite.Require().NoError(keeper.VCBDebitForTest(suite.keeper, suite.ctx, types.NewValue(math.NewInt(10), gm)))
	balance, err := suite.keeper.GetValueBalance(suite.ctx, gm)
	suite.Require().NoError(err)
	suite.Require().True(balance.IsZero())

	err = keeper.VCBCreditForTest(suite.keeper, suite.ctx, types.NewValue(math.NewInt(-1), gm))
	suite.Require().ErrorIs(err, types.ErrInvariantViolation)
}
