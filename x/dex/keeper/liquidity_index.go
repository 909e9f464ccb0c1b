package keeper

import (
	"context"
	"slices"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"

	"github.com/paw-chain/sdex/x/dex/types"
)

// updateAvailableLiquidity re-keys the routable-asset graph for both
// directions of the position's pair. Selling B for A can reach the A
// reserves of every open position on (A, B); that total is the rank of A
// among the assets routable from B.
func (k Keeper) updateAvailableLiquidity(ctx context.Context, prev *types.Position, next types.Position) error {
	pair := next.Phi.Pair
	for _, dir := range []types.DirectedTradingPair{pair.Forward(), pair.Backward()} {
		// dir.Start is the asset obtained, dir.End the asset sold.
		prevContribution := math.ZeroInt()
		if prev != nil && prev.State.IsOpened() {
			prevContribution, _ = prev.ReservesFor(dir.Start)
		}
		nextContribution := math.ZeroInt()
		if next.State.IsOpened() {
			nextContribution, _ = next.ReservesFor(dir.Start)
		}
		if prevContribution.Equal(nextContribution) {
			continue
		}
		if err := k.adjustLiquidity(ctx, dir.End, dir.Start, nextContribution.Sub(prevContribution)); err != nil {
			return err
		}
	}
	return nil
}

func (k Keeper) adjustLiquidity(ctx context.Context, from, to types.AssetID, delta math.Int) error {
	store := k.getStore(ctx)
	current, err := getAmount(store, AvailableLiquidityKey(from, to))
	if err != nil {
		return err
	}
	updated := current.Add(delta)
	if updated.IsNegative() {
		return types.ErrInvariantViolation.Wrapf("liquidity from %s to %s would be negative", from, to)
	}
	if current.IsPositive() {
		store.Delete(RoutableAssetKey(from, types.AmountKey(current), to))
	}
	if updated.IsPositive() {
		store.Set(RoutableAssetKey(from, types.AmountKey(updated), to), indexPresent)
	}
	return setAmount(store, AvailableLiquidityKey(from, to), updated)
}

// AvailableLiquidity returns how much of to is reachable by selling from.
func (k Keeper) AvailableLiquidity(ctx context.Context, from, to types.AssetID) (math.Int, error) {
	return getAmount(k.getStore(ctx), AvailableLiquidityKey(from, to))
}

// OrderedRoutableAssets returns up to limit assets routable from from, deepest
// first, ties broken by ascending asset id. Assets in skip are passed over.
func (k Keeper) OrderedRoutableAssets(ctx context.Context, from types.AssetID, limit int, skip []types.AssetID) ([]types.AssetID, error) {
	prefix := RoutableAssetsPrefix(from)
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iter.Close()

	var assets []types.AssetID
	for ; iter.Valid() && len(assets) < limit; iter.Next() {
		key := iter.Key()
		to, err := types.AssetIDFromBytes(key[len(key)-types.AssetIDLen:])
		if err != nil {
			return nil, err
		}
		if slices.Contains(skip, to) {
			continue
		}
		assets = append(assets, to)
	}
	return assets, nil
}

// CandidateSet returns the intermediate assets considered when routing out
// of from: the fixed candidates first, then up to limit further assets by
// liquidity.
func (k Keeper) CandidateSet(ctx context.Context, from types.AssetID, fixed []types.AssetID, limit uint32) ([]types.AssetID, error) {
	dynamic, err := k.OrderedRoutableAssets(ctx, from, int(limit), fixed)
	if err != nil {
		return nil, err
	}
	candidates := make([]types.AssetID, 0, len(fixed)+len(dynamic))
	candidates = append(candidates, fixed...)
	return append(candidates, dynamic...), nil
}
