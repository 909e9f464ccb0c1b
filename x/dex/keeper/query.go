package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/sdex/x/dex/types"
)

// PositionByID returns a position by id.
func (k Keeper) PositionByID(ctx context.Context, id types.PositionID) (types.Position, error) {
	return k.GetPosition(ctx, id)
}

// PositionsForPair returns the positions quoting pair in id order. When
// openOnly is set closed and withdrawn positions are left out.
func (k Keeper) PositionsForPair(ctx context.Context, pair types.TradingPair, openOnly bool) ([]types.Position, error) {
	var positions []types.Position
	err := k.IteratePositions(ctx, func(_ types.PositionID, position types.Position) bool {
		if position.Phi.Pair != pair {
			return false
		}
		if openOnly && !position.State.IsOpened() {
			return false
		}
		positions = append(positions, position)
		return false
	})
	return positions, err
}

// Spread returns the best effective price in each direction of pair. A nil
// price means the direction has no liquidity.
func (k Keeper) Spread(ctx context.Context, pair types.TradingPair) (forward, backward *types.Price, err error) {
	if price, found, err := k.bestPrice(ctx, pair.Forward()); err != nil {
		return nil, nil, err
	} else if found {
		forward = &price
	}
	if price, found, err := k.bestPrice(ctx, pair.Backward()); err != nil {
		return nil, nil, err
	} else if found {
		backward = &price
	}
	return forward, backward, nil
}

// BatchOutputs returns the settlement of each given pair at height,
// skipping pairs that did not trade.
func (k Keeper) BatchOutputs(ctx context.Context, height uint64, pairs []types.TradingPair) ([]types.BatchSwapOutputData, error) {
	var outputs []types.BatchSwapOutputData
	for _, pair := range pairs {
		output, err := k.GetOutputData(ctx, height, pair)
		if errors.Is(err, types.ErrOutputDataNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}

// SimulateTrade routes input into output against the current book under
// the chain's routing parameters and execution budget, without changing
// state. An empty execution means no route was found.
func (k Keeper) SimulateTrade(ctx context.Context, input types.Value, output types.AssetID) (types.SimulatedTrade, error) {
	return k.simulateTrade(ctx, input, output, 0)
}

// SimulateSingleHopTrade is SimulateTrade restricted to direct routes.
func (k Keeper) SimulateSingleHopTrade(ctx context.Context, input types.Value, output types.AssetID) (types.SimulatedTrade, error) {
	return k.simulateTrade(ctx, input, output, 1)
}

func (k Keeper) simulateTrade(ctx context.Context, input types.Value, output types.AssetID, maxHops uint32) (types.SimulatedTrade, error) {
	if input.AssetID == output {
		return types.SimulatedTrade{}, types.ErrInvalidRoute.Wrap("input and output assets are the same")
	}
	if input.Amount.IsNil() || input.Amount.IsNegative() || input.Amount.GT(types.MaxReserveAmount) {
		return types.SimulatedTrade{}, types.ErrInvalidAmount.Wrapf("invalid input amount %s", input.Amount)
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return types.SimulatedTrade{}, err
	}
	routing := params.RoutingParams().WithExtraCandidates(input.AssetID, output)
	if maxHops > 0 {
		routing.MaxHops = maxHops
	}

	// The cached context is never written back.
	cacheCtx, _ := sdk.UnwrapSDKContext(ctx).CacheContext()
	if err := k.vcbCredit(cacheCtx, input); err != nil {
		return types.SimulatedTrade{}, err
	}
	execution, err := k.RouteAndFill(cacheCtx, input.AssetID, output, input.Amount, routing, NewExecutionBudget(params.MaxExecutionBudget))
	if err != nil {
		return types.SimulatedTrade{}, fmt.Errorf("simulate trade: %w", err)
	}

	result := types.SimulatedTrade{
		Execution: types.SwapExecution{
			Input:  types.NewValue(math.ZeroInt(), input.AssetID),
			Output: types.NewValue(math.ZeroInt(), output),
		},
		Unfilled: input,
	}
	if execution != nil {
		result.Execution = *execution
		result.Unfilled = types.NewValue(input.Amount.Sub(execution.Input.Amount), input.AssetID)
	}
	return result, nil
}

// ArbExecutions returns the arbitrage executions recorded between start
// and end, both inclusive, in height order.
func (k Keeper) ArbExecutions(ctx context.Context, start, end uint64) ([]types.RecordedExecution, error) {
	var out []types.RecordedExecution
	err := k.iterateHeightRange(ctx, ArbExecutionKeyPrefix, start, end, func(height uint64, _, bz []byte) error {
		var execution types.SwapExecution
		if err := json.Unmarshal(bz, &execution); err != nil {
			return fmt.Errorf("arb execution at %d: %w", height, err)
		}
		out = append(out, types.RecordedExecution{Height: height, Execution: execution})
		return nil
	})
	return out, err
}

// SwapExecutions returns the batch swap executions recorded between start
// and end, both inclusive, ordered by height then direction. A non-nil pair
// restricts the result to that direction.
func (k Keeper) SwapExecutions(ctx context.Context, start, end uint64, pair *types.DirectedTradingPair) ([]types.RecordedExecution, error) {
	var out []types.RecordedExecution
	err := k.iterateHeightRange(ctx, SwapExecutionKeyPrefix, start, end, func(height uint64, rest, bz []byte) error {
		if len(rest) != 2*types.AssetIDLen {
			return fmt.Errorf("swap execution key at %d has %d pair bytes", height, len(rest))
		}
		var dir types.DirectedTradingPair
		copy(dir.Start[:], rest[:types.AssetIDLen])
		copy(dir.End[:], rest[types.AssetIDLen:])
		if pair != nil && dir != *pair {
			return nil
		}
		var execution types.SwapExecution
		if err := json.Unmarshal(bz, &execution); err != nil {
			return fmt.Errorf("swap execution at %d: %w", height, err)
		}
		out = append(out, types.RecordedExecution{Height: height, Pair: dir, Execution: execution})
		return nil
	})
	return out, err
}

// iterateHeightRange walks keys prefix | height | rest with start <= height <= end.
func (k Keeper) iterateHeightRange(ctx context.Context, prefix []byte, start, end uint64, cb func(height uint64, rest, value []byte) error) error {
	if start > end {
		return nil
	}
	store := k.getStore(ctx)
	upper := storetypes.PrefixEndBytes(prefix)
	if end < ^uint64(0) {
		upper = concat(prefix, heightBytes(end+1))
	}
	iter := store.Iterator(concat(prefix, heightBytes(start)), upper)
	defer iter.Close()
	for ; iter.Valid(); iter.Next() {
		key := iter.Key()[len(prefix):]
		if err := cb(binary.BigEndian.Uint64(key[:8]), key[8:], iter.Value()); err != nil {
			return err
		}
	}
	return nil
}
