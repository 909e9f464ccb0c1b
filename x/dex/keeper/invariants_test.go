package keeper_test

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/sdex/x/dex/keeper"
	"github.com/paw-chain/sdex/x/dex/types"
)

type invariantRegistry map[string]sdk.Invariant

func (r invariantRegistry) RegisterRoute(moduleName, route string, invar sdk.Invariant) {
	r[moduleName+"/"+route] = invar
}

func (suite *KeeperTestSuite) TestRegisterInvariants() {
	registry := invariantRegistry{}
	keeper.RegisterInvariants(registry, *suite.keeper)
	suite.Require().Len(registry, 3)

	suite.open(types.NewDirectedTradingPair(gm, gn), 1, 1, 1_000, 0)
	for route, invar := range registry {
		msg, broken := invar(suite.ctx)
		suite.Require().False(broken, "%s: %s", route, msg)
	}
}

func (suite *KeeperTestSuite) TestInvariants_DetectCorruptReserves() {
	suite.open(types.NewDirectedTradingPair(gm, gn), 1, 1, 1_000, 0)
	suite.requireInvariants()

	suite.Require().NoError(keeper.CorruptAggregateReservesForTest(suite.keeper, suite.ctx, types.NewValue(math.NewInt(2_000), gm)))

	_, broken := keeper.AggregateReservesInvariant(*suite.keeper)(suite.ctx)
	suite.Require().True(broken)
	_, broken = keeper.ValueConservationInvariant(*suite.keeper)(suite.ctx)
	suite.Require().True(broken)
	_, broken = keeper.PriceIndexInvariant(*suite.keeper)(suite.ctx)
	suite.Require().False(broken)

	_, broken = keeper.AllInvariants(*suite.keeper)(suite.ctx)
	suite.Require().True(broken)
}
