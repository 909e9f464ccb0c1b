package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/math"

	"github.com/paw-chain/sdex/x/dex/types"
)

// RouteAndFill sells input of asset1 for asset2, alternating path search
// and route fills until the input is spent, no path remains, the price
// limit is reached or the budget runs out. It returns nil when nothing was
// executed.
func (k Keeper) RouteAndFill(
	ctx context.Context,
	asset1, asset2 types.AssetID,
	input math.Int,
	params types.RoutingParams,
	budget *ExecutionBudget,
) (*types.SwapExecution, error) {
	if input.IsZero() {
		return nil, nil
	}
	logger := k.Logger(ctx)

	unfilled := input
	total := types.SwapExecution{
		Input:  types.NewValue(math.ZeroInt(), asset1),
		Output: types.NewValue(math.ZeroInt(), asset2),
	}

	for {
		if budget.Exhausted() {
			logger.Debug("execution budget exhausted", "used", budget.Used())
			break
		}
		budget.Increment()

		path, spill, err := k.PathSearch(ctx, asset1, asset2, params)
		if err != nil {
			return nil, err
		}
		if path == nil || path.Hops() == 0 {
			logger.Debug("no path found", "from", asset1.String(), "to", asset2.String())
			break
		}

		delta := math.MinInt(unfilled, types.MaxReserveAmount)
		execution, err := k.FillRoute(ctx, types.NewValue(delta, asset1), path.Nodes, spill, params.PriceLimit)
		var overflow *ExecutionOverflowError
		switch {
		case errors.As(err, &overflow):
			logger.Debug("execution overflow, closing position", "position_id", overflow.PositionID.String())
			if err := k.closePosition(ctx, overflow.PositionID, types.CloseReasonOverflow); err != nil {
				return nil, err
			}
			k.metrics.ExecutionOverflow.Inc()
			continue
		case errors.Is(err, types.ErrInsufficientLiquidity):
			logger.Debug("route lost liquidity", "path", path.String(), "err", err.Error())
			return finishRoute(total), nil
		case err != nil:
			return nil, err
		}

		if execution.Output.AssetID != asset2 || execution.Input.AssetID != asset1 {
			return nil, types.ErrInvariantViolation.Wrapf("route %s executed %s for %s", path, execution.Input, execution.Output)
		}
		if execution.Input.Amount.GT(unfilled) {
			return nil, types.ErrInvariantViolation.Wrapf("route consumed %s with %s remaining", execution.Input.Amount, unfilled)
		}
		unfilled = unfilled.Sub(execution.Input.Amount)
		total.Append(execution)

		if unfilled.IsZero() {
			break
		}
		maxPrice, ok := execution.MaxPrice()
		if !ok {
			logger.Debug("no traces in execution", "path", path.String())
			break
		}
		if params.PriceLimit != nil && !maxPrice.LT(*params.PriceLimit) {
			logger.Debug("execution price reached limit", "price", maxPrice.String(), "limit", params.PriceLimit.String())
			break
		}
	}
	k.metrics.RouteIterations.Observe(float64(budget.Used()))
	return finishRoute(total), nil
}

func finishRoute(total types.SwapExecution) *types.SwapExecution {
	if total.IsEmpty() {
		return nil
	}
	return &total
}
