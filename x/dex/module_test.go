package dex_test

import (
	"encoding/json"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/sdex/testutil/keeper"
	"github.com/paw-chain/sdex/x/dex"
	"github.com/paw-chain/sdex/x/dex/types"
)

func TestAppModuleBasic_Genesis(t *testing.T) {
	basic := dex.AppModuleBasic{}
	require.Equal(t, types.ModuleName, basic.Name())

	bz := basic.DefaultGenesis(nil)
	require.NoError(t, basic.ValidateGenesis(nil, nil, bz))
	require.Error(t, basic.ValidateGenesis(nil, nil, json.RawMessage(`{"params":{"max_hops":0}}`)))
	require.Error(t, basic.ValidateGenesis(nil, nil, json.RawMessage(`not json`)))
}

type appOptions map[string]any

func (o appOptions) Get(key string) any { return o[key] }

func TestNewAppModule_Telemetry(t *testing.T) {
	k, _ := keepertest.DexKeeper(t)

	am := dex.NewAppModule(nil, k, appOptions{"chain-id": "sdex-1"})
	require.NotNil(t, am.Telemetry())
	require.NoError(t, am.Telemetry().HealthCheck())

	require.Panics(t, func() {
		dex.NewAppModule(nil, k, appOptions{"dex-telemetry.enabled": true})
	})
}

func TestAppModule_BlockLifecycle(t *testing.T) {
	k, ctx := keepertest.DexKeeper(t)
	am := dex.NewAppModule(nil, k, nil)

	require.NoError(t, am.BeginBlock(ctx))
	bc := am.Pipeline().Current()
	require.NotNil(t, bc)

	gm, gn := keepertest.TestAsset("gm"), keepertest.TestAsset("gn")
	keepertest.OpenTestPosition(t, k, ctx, bc, types.NewDirectedTradingPair(gm, gn), 0,
		math.OneInt(), math.OneInt(), math.NewInt(100), math.ZeroInt())
	pair := types.MustNewTradingPair(gm, gn)
	flow := types.NewSwapFlow(math.NewInt(10), math.ZeroInt())
	if pair.Asset1 == gm {
		flow = types.NewSwapFlow(math.ZeroInt(), math.NewInt(10))
	}
	require.NoError(t, k.AddSwapFlow(ctx, bc, pair, flow))

	require.NoError(t, am.EndBlock(ctx))
	require.Nil(t, am.Pipeline().Current())

	output, err := k.GetOutputData(ctx, bc.Height, pair)
	require.NoError(t, err)
	require.Equal(t, "10", output.Lambda1.Add(output.Lambda2).String())

	exported := am.ExportGenesis(ctx, nil)
	var genState types.GenesisState
	require.NoError(t, json.Unmarshal(exported, &genState))
	require.Len(t, genState.Positions, 1)

	k2, ctx2 := keepertest.DexKeeper(t)
	dex.NewAppModule(nil, k2, nil).InitGenesis(ctx2, nil, exported)
	require.Equal(t, string(exported), string(dex.NewAppModule(nil, k2, nil).ExportGenesis(ctx2, nil)))
}
