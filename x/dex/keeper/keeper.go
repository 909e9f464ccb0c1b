package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/sdex/x/dex/types"
)

// Keeper of the dex store
type Keeper struct {
	storeKey    storetypes.StoreKey
	epochSource types.EpochSource
	metrics     *DEXMetrics
}

// NewKeeper creates a new dex Keeper instance. epochSource may be nil, in
// which case every block is reported as part of epoch zero.
func NewKeeper(key storetypes.StoreKey, epochSource types.EpochSource) *Keeper {
	return &Keeper{
		storeKey:    key,
		epochSource: epochSource,
		metrics:     NewDEXMetrics(),
	}
}

// getStore returns the KVStore for the dex module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}
