package keeper

import (
	"context"

	"github.com/paw-chain/sdex/x/dex/types"
)

// AddSwapFlow records swap demand for pair, to be settled in the block's
// batch. The DEX is credited with the input as it enters.
func (k Keeper) AddSwapFlow(ctx context.Context, bc *types.BlockContext, pair types.TradingPair, flow types.SwapFlow) error {
	if err := pair.Validate(); err != nil {
		return err
	}
	if err := flow.Validate(); err != nil {
		return err
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}
	if !params.IsEnabled {
		return types.ErrDexDisabled
	}
	if flow.IsZero() {
		return nil
	}

	if err := k.vcbCredit(ctx, types.NewValue(flow.Delta1, pair.Asset1)); err != nil {
		return err
	}
	if err := k.vcbCredit(ctx, types.NewValue(flow.Delta2, pair.Asset2)); err != nil {
		return err
	}
	bc.AccumulateSwapFlow(pair, flow)

	limit := int(params.RecentlyAccessedAssetLimit)
	bc.AddRecentlyAccessedAsset(pair.Asset1, params.FixedCandidates, limit)
	bc.AddRecentlyAccessedAsset(pair.Asset2, params.FixedCandidates, limit)
	return nil
}
