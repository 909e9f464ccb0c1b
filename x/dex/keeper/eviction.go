package keeper

import (
	"context"

	storetypes "cosmossdk.io/store/types"

	"github.com/paw-chain/sdex/x/dex/types"
)

// queuedDirections returns the directed pairs whose eviction queue holds the
// position: those where it has inventory of the start asset.
func queuedDirections(position types.Position) []types.DirectedTradingPair {
	var dirs []types.DirectedTradingPair
	for _, dir := range []types.DirectedTradingPair{position.Phi.Pair.Forward(), position.Phi.Pair.Backward()} {
		if inventory, _ := position.ReservesFor(dir.Start); inventory.IsPositive() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (k Keeper) enqueueForEviction(ctx context.Context, position types.Position, id types.PositionID) {
	store := k.getStore(ctx)
	for _, dir := range queuedDirections(position) {
		inventory, _ := position.ReservesFor(dir.Start)
		store.Set(EvictionQueueKey(dir, types.AmountKey(inventory), id), indexPresent)
	}
}

func (k Keeper) dequeueForEviction(ctx context.Context, position types.Position, id types.PositionID) {
	store := k.getStore(ctx)
	for _, dir := range queuedDirections(position) {
		inventory, _ := position.ReservesFor(dir.Start)
		store.Delete(EvictionQueueKey(dir, types.AmountKey(inventory), id))
	}
}

// evictionQueue returns the ids queued on dir, shallowest first.
func (k Keeper) evictionQueue(ctx context.Context, dir types.DirectedTradingPair) ([]types.PositionID, error) {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), EvictionQueuePrefix(dir))
	defer iter.Close()

	var ids []types.PositionID
	for ; iter.Valid(); iter.Next() {
		key := iter.Key()
		id, err := types.PositionIDFromBytes(key[len(key)-32:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// enforcePairCapacity closes the shallowest positions of each direction of
// pair until neither queue holds more than maxPositions entries.
func (k Keeper) enforcePairCapacity(ctx context.Context, pair types.TradingPair, maxPositions uint32) ([]types.PositionID, error) {
	var evicted []types.PositionID
	for _, dir := range []types.DirectedTradingPair{pair.Forward(), pair.Backward()} {
		queue, err := k.evictionQueue(ctx, dir)
		if err != nil {
			return nil, err
		}
		excess := len(queue) - int(maxPositions)
		for i := 0; i < excess; i++ {
			id := queue[i]
			if err := k.closePosition(ctx, id, types.CloseReasonEvicted); err != nil {
				return nil, err
			}
			evicted = append(evicted, id)
		}
	}
	if len(evicted) > 0 {
		k.Logger(ctx).Info("evicted positions", "pair", pair.String(), "count", len(evicted))
		k.metrics.PositionsEvicted.Add(float64(len(evicted)))
	}
	return evicted, nil
}

// EvictPositions enforces the capacity bound on every pair that saw activity
// in the block, since fills can move inventory between directions.
func (k Keeper) EvictPositions(ctx context.Context, bc *types.BlockContext) ([]types.PositionID, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	var evicted []types.PositionID
	for _, pair := range bc.ActivePairs() {
		ids, err := k.enforcePairCapacity(ctx, pair, params.MaxPositionsPerPair)
		if err != nil {
			return nil, err
		}
		evicted = append(evicted, ids...)
	}
	return evicted, nil
}
