package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"

	"github.com/paw-chain/sdex/x/dex/types"
)

// Arbitrage routes arbToken back into itself below a price of one, funded
// by a flash loan of MaxReserveAmount. The search runs in a forked context
// that is only committed when the cycle returns strictly more than it took;
// the surplus is burned. It returns the burned value, or nil when no
// profitable cycle exists.
func (k Keeper) Arbitrage(ctx context.Context, bc *types.BlockContext, arbToken types.AssetID, params types.RoutingParams, executionBudget uint32) (*types.Value, error) {
	if params.PriceLimit == nil {
		params = params.WithPriceLimit(types.OnePrice())
	}
	logger := k.Logger(ctx)
	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()

	flashLoan := types.NewValue(types.MaxReserveAmount, arbToken)
	if err := k.vcbCredit(cacheCtx, flashLoan); err != nil {
		return nil, err
	}
	execution, err := k.RouteAndFill(cacheCtx, arbToken, arbToken, flashLoan.Amount, params, NewExecutionBudget(executionBudget))
	if err != nil {
		k.metrics.ArbitrageRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("arbitrage route: %w", err)
	}
	if execution == nil {
		k.metrics.ArbitrageRuns.WithLabelValues("none").Inc()
		logger.Debug("no arbitrage found", "asset", arbToken.String())
		return nil, nil
	}
	if !execution.Output.Amount.GT(execution.Input.Amount) {
		k.metrics.ArbitrageRuns.WithLabelValues("unprofitable").Inc()
		logger.Debug("discarding unprofitable arbitrage", "input", execution.Input.String(), "output", execution.Output.String())
		return nil, nil
	}

	// Repay the flash loan out of the cycle's output and burn the rest.
	unfilled := flashLoan.Amount.Sub(execution.Input.Amount)
	if err := k.vcbDebit(cacheCtx, types.NewValue(unfilled.Add(execution.Output.Amount), arbToken)); err != nil {
		return nil, err
	}
	profit := types.NewValue(execution.Output.Amount.Sub(execution.Input.Amount), arbToken)
	if err := k.addBurnedTotal(cacheCtx, profit); err != nil {
		return nil, err
	}
	if err := k.appendArbExecution(cacheCtx, bc.Height, *execution); err != nil {
		return nil, err
	}
	if err := k.checkValueConservation(cacheCtx, arbToken); err != nil {
		return nil, err
	}
	write()

	markFilledPairs(bc, *execution)
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeArbitrage,
			sdk.NewAttribute(types.AttributeKeyHeight, fmt.Sprintf("%d", bc.Height)),
			sdk.NewAttribute(types.AttributeKeyAssetID, arbToken.String()),
			sdk.NewAttribute(types.AttributeKeyInput, execution.Input.Amount.String()),
			sdk.NewAttribute(types.AttributeKeyOutput, execution.Output.Amount.String()),
			sdk.NewAttribute(types.AttributeKeyProfit, profit.Amount.String()),
		),
	)
	k.metrics.ArbitrageRuns.WithLabelValues("burned").Inc()
	k.metrics.ArbitrageBurned.WithLabelValues(arbToken.String()).Add(approxFloat(profit.Amount))
	telemetry.SetGaugeWithLabels(
		[]string{types.ModuleName, "arbitrage", "profit"},
		approxFloat32(profit.Amount),
		[]metrics.Label{telemetry.NewLabel("asset", arbToken.String())},
	)
	logger.Info("arbitrage profit burned", "asset", arbToken.String(), "profit", profit.Amount.String(), "traces", len(execution.Traces))
	return &profit, nil
}

// appendArbExecution merges execution into the record of height, which
// may already hold earlier rounds of the same block.
func (k Keeper) appendArbExecution(ctx context.Context, height uint64, execution types.SwapExecution) error {
	store := k.getStore(ctx)
	var recorded types.SwapExecution
	found, err := getJSON(store, ArbExecutionKey(height), &recorded)
	if err != nil {
		return err
	}
	if !found {
		return setJSON(store, ArbExecutionKey(height), execution)
	}
	recorded.Append(execution)
	return setJSON(store, ArbExecutionKey(height), recorded)
}

func (k Keeper) addBurnedTotal(ctx context.Context, v types.Value) error {
	store := k.getStore(ctx)
	total, err := getAmount(store, BurnedTotalKey(v.AssetID))
	if err != nil {
		return err
	}
	return setAmount(store, BurnedTotalKey(v.AssetID), total.Add(v.Amount))
}

// GetBurnedTotal returns the cumulative arbitrage burn of an asset.
func (k Keeper) GetBurnedTotal(ctx context.Context, asset types.AssetID) (math.Int, error) {
	return getAmount(k.getStore(ctx), BurnedTotalKey(asset))
}

// IterateBurnedTotals calls cb for every asset with a nonzero burn total.
func (k Keeper) IterateBurnedTotals(ctx context.Context, cb func(types.Value) (stop bool)) error {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), BurnedTotalKeyPrefix)
	defer iter.Close()
	for ; iter.Valid(); iter.Next() {
		asset, err := types.AssetIDFromBytes(iter.Key()[len(BurnedTotalKeyPrefix):])
		if err != nil {
			return err
		}
		var amount math.Int
		if err := amount.Unmarshal(iter.Value()); err != nil {
			return err
		}
		if cb(types.NewValue(amount, asset)) {
			return nil
		}
	}
	return nil
}

// GetArbExecution returns the arbitrage executed at height, if any.
func (k Keeper) GetArbExecution(ctx context.Context, height uint64) (types.SwapExecution, bool, error) {
	var execution types.SwapExecution
	found, err := getJSON(k.getStore(ctx), ArbExecutionKey(height), &execution)
	return execution, found, err
}
