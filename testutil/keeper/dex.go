package keeper

import (
	"context"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/sdex/x/dex/keeper"
	"github.com/paw-chain/sdex/x/dex/types"
)

// DexKeeper creates a test keeper for the DEX module backed by an in-memory
// store, initialized with the default genesis state at height 1.
func DexKeeper(t testing.TB) (*keeper.Keeper, sdk.Context) {
	return DexKeeperWithGenesis(t, *types.DefaultGenesis())
}

// DexKeeperWithGenesis is DexKeeper with a caller supplied genesis state.
func DexKeeperWithGenesis(t testing.TB, genState types.GenesisState) (*keeper.Keeper, sdk.Context) {
	t.Helper()
	return newDexKeeper(t, genState, nil)
}

// DexKeeperWithEpochs is DexKeeper with epoch boundaries reported by src.
func DexKeeperWithEpochs(t testing.TB, src types.EpochSource) (*keeper.Keeper, sdk.Context) {
	t.Helper()
	return newDexKeeper(t, *types.DefaultGenesis(), src)
}

// FixedEpoch reports the same epoch start at every height.
type FixedEpoch uint64

func (e FixedEpoch) CurrentEpochStartHeight(context.Context) uint64 { return uint64(e) }

func newDexKeeper(t testing.TB, genState types.GenesisState, src types.EpochSource) (*keeper.Keeper, sdk.Context) {
	t.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	k := keeper.NewKeeper(storeKey, src)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Height: 1}, false, log.NewNopLogger())
	require.NoError(t, k.InitGenesis(ctx, genState))

	return k, ctx
}

// TestAsset derives a deterministic asset id from a denom.
func TestAsset(denom string) types.AssetID {
	return types.AssetIDFromDenom(denom)
}

// OpenTestPosition opens a fee-bearing position on pair and returns its id.
// p is the coefficient of pair.Start and q of pair.End, so selling pair.Start
// into the position yields p/q units of pair.End before fees.
func OpenTestPosition(
	t testing.TB,
	k *keeper.Keeper,
	ctx sdk.Context,
	bc *types.BlockContext,
	pair types.DirectedTradingPair,
	fee uint32,
	p, q, reserveStart, reserveEnd math.Int,
) types.PositionID {
	t.Helper()

	position, err := types.NewPositionWithRand(nil, pair, fee, p, q, types.NewReserves(reserveStart, reserveEnd))
	require.NoError(t, err)

	id, err := k.OpenPosition(ctx, bc, position)
	require.NoError(t, err)
	return id
}
