package keeper

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"

	"github.com/paw-chain/sdex/x/dex/types"
)

// HandleBatchSwaps settles a pair's net swap flow for the block. Both
// directions are routed independently, each with its own execution budget;
// whatever cannot be filled is returned in the input asset. The output data
// and executions are persisted under the block height.
func (k Keeper) HandleBatchSwaps(
	ctx context.Context,
	bc *types.BlockContext,
	pair types.TradingPair,
	flow types.SwapFlow,
	params types.RoutingParams,
	executionBudget uint32,
) (types.BatchSwapOutputData, error) {
	start := time.Now()
	if err := pair.Validate(); err != nil {
		return types.BatchSwapOutputData{}, err
	}
	if err := flow.Validate(); err != nil {
		return types.BatchSwapOutputData{}, err
	}
	if k.getStore(ctx).Has(OutputDataKey(bc.Height, pair)) {
		return types.BatchSwapOutputData{}, types.ErrInvariantViolation.Wrapf("pair %s already settled at height %d", pair, bc.Height)
	}

	exec1For2, err := k.RouteAndFill(ctx, pair.Asset1, pair.Asset2, flow.Delta1, params, NewExecutionBudget(executionBudget))
	if err != nil {
		return types.BatchSwapOutputData{}, fmt.Errorf("route %s: %w", pair.Forward(), err)
	}
	exec2For1, err := k.RouteAndFill(ctx, pair.Asset2, pair.Asset1, flow.Delta2, params, NewExecutionBudget(executionBudget))
	if err != nil {
		return types.BatchSwapOutputData{}, fmt.Errorf("route %s: %w", pair.Backward(), err)
	}

	lambda2, unfilled1 := math.ZeroInt(), flow.Delta1
	if exec1For2 != nil {
		lambda2 = exec1For2.Output.Amount
		unfilled1 = flow.Delta1.Sub(exec1For2.Input.Amount)
	}
	lambda1, unfilled2 := math.ZeroInt(), flow.Delta2
	if exec2For1 != nil {
		lambda1 = exec2For1.Output.Amount
		unfilled2 = flow.Delta2.Sub(exec2For1.Input.Amount)
	}

	output := types.BatchSwapOutputData{
		Delta1:              flow.Delta1,
		Delta2:              flow.Delta2,
		Lambda1:             lambda1,
		Lambda2:             lambda2,
		Unfilled1:           unfilled1,
		Unfilled2:           unfilled2,
		Height:              bc.Height,
		TradingPair:         pair,
		EpochStartingHeight: bc.EpochStartingHeight,
	}
	if err := output.Validate(); err != nil {
		return types.BatchSwapOutputData{}, err
	}

	// Everything paid out to swappers leaves the DEX: the unfilled input
	// and the output of the opposite direction.
	if err := k.vcbDebit(ctx, types.NewValue(unfilled1.Add(lambda1), pair.Asset1)); err != nil {
		return types.BatchSwapOutputData{}, err
	}
	if err := k.vcbDebit(ctx, types.NewValue(unfilled2.Add(lambda2), pair.Asset2)); err != nil {
		return types.BatchSwapOutputData{}, err
	}

	if err := k.setOutputData(ctx, output); err != nil {
		return types.BatchSwapOutputData{}, err
	}
	for _, leg := range []struct {
		dir  types.DirectedTradingPair
		exec *types.SwapExecution
	}{
		{pair.Forward(), exec1For2},
		{pair.Backward(), exec2For1},
	} {
		if leg.exec == nil {
			continue
		}
		if err := setJSON(k.getStore(ctx), SwapExecutionKey(bc.Height, leg.dir), leg.exec); err != nil {
			return types.BatchSwapOutputData{}, err
		}
		bc.RecordExecution(leg.dir, *leg.exec)
		markFilledPairs(bc, *leg.exec)
	}
	bc.SetOutput(output)

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeBatchSwap,
			sdk.NewAttribute(types.AttributeKeyTradingPair, pair.String()),
			sdk.NewAttribute(types.AttributeKeyHeight, fmt.Sprintf("%d", bc.Height)),
			sdk.NewAttribute(types.AttributeKeyDelta1, output.Delta1.String()),
			sdk.NewAttribute(types.AttributeKeyDelta2, output.Delta2.String()),
			sdk.NewAttribute(types.AttributeKeyLambda1, output.Lambda1.String()),
			sdk.NewAttribute(types.AttributeKeyLambda2, output.Lambda2.String()),
			sdk.NewAttribute(types.AttributeKeyUnfilled1, output.Unfilled1.String()),
			sdk.NewAttribute(types.AttributeKeyUnfilled2, output.Unfilled2.String()),
		),
	)
	k.metrics.BatchSwapsTotal.Inc()
	k.metrics.BatchSwapInput.WithLabelValues(pair.Asset1.String()).Add(approxFloat(flow.Delta1))
	k.metrics.BatchSwapInput.WithLabelValues(pair.Asset2.String()).Add(approxFloat(flow.Delta2))
	k.metrics.BatchSwapLatency.Observe(time.Since(start).Seconds())
	telemetry.IncrCounterWithLabels(
		[]string{types.ModuleName, "batch_swap"},
		1,
		[]metrics.Label{
			telemetry.NewLabel("pair", pair.String()),
			telemetry.NewLabel("filled", fmt.Sprintf("%t", exec1For2 != nil || exec2For1 != nil)),
		},
	)

	k.Logger(ctx).Debug("settled batch swap",
		"pair", pair.String(),
		"delta_1", output.Delta1.String(),
		"delta_2", output.Delta2.String(),
		"lambda_1", output.Lambda1.String(),
		"lambda_2", output.Lambda2.String(),
	)
	return output, nil
}

// markFilledPairs marks every pair a fill traded on as active, so eviction
// revisits pairs whose inventory moved.
func markFilledPairs(bc *types.BlockContext, execution types.SwapExecution) {
	for _, fill := range execution.Fills {
		pair, err := types.NewTradingPair(fill.Input.AssetID, fill.Output.AssetID)
		if err != nil {
			continue
		}
		bc.MarkActive(pair)
	}
}

func (k Keeper) setOutputData(ctx context.Context, output types.BatchSwapOutputData) error {
	return setJSON(k.getStore(ctx), OutputDataKey(output.Height, output.TradingPair), output)
}

// GetOutputData returns the settlement of pair at height.
func (k Keeper) GetOutputData(ctx context.Context, height uint64, pair types.TradingPair) (types.BatchSwapOutputData, error) {
	var output types.BatchSwapOutputData
	found, err := getJSON(k.getStore(ctx), OutputDataKey(height, pair), &output)
	if err != nil {
		return types.BatchSwapOutputData{}, err
	}
	if !found {
		return types.BatchSwapOutputData{}, types.ErrOutputDataNotFound.Wrapf("pair %s at height %d", pair, height)
	}
	return output, nil
}

// GetSwapExecution returns the execution of one direction of a batch. It
// reports false when nothing was executed in that direction.
func (k Keeper) GetSwapExecution(ctx context.Context, height uint64, dir types.DirectedTradingPair) (types.SwapExecution, bool, error) {
	var execution types.SwapExecution
	found, err := getJSON(k.getStore(ctx), SwapExecutionKey(height, dir), &execution)
	return execution, found, err
}
