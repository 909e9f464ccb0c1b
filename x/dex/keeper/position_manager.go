package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/sdex/x/dex/types"
)

func (k Keeper) getPosition(ctx context.Context, id types.PositionID) (types.Position, bool, error) {
	var position types.Position
	found, err := getJSON(k.getStore(ctx), PositionKey(id), &position)
	return position, found, err
}

// GetPosition returns a position by id.
func (k Keeper) GetPosition(ctx context.Context, id types.PositionID) (types.Position, error) {
	position, found, err := k.getPosition(ctx, id)
	if err != nil {
		return types.Position{}, err
	}
	if !found {
		return types.Position{}, types.ErrPositionNotFound.Wrapf("position %s", id)
	}
	return position, nil
}

// IteratePositions calls cb for every position in id order until cb returns true.
func (k Keeper) IteratePositions(ctx context.Context, cb func(types.PositionID, types.Position) (stop bool)) error {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), PositionKeyPrefix)
	defer iter.Close()
	for ; iter.Valid(); iter.Next() {
		var position types.Position
		if err := json.Unmarshal(iter.Value(), &position); err != nil {
			return err
		}
		id, err := types.PositionIDFromBytes(iter.Key()[len(PositionKeyPrefix):])
		if err != nil {
			return err
		}
		if cb(id, position) {
			return nil
		}
	}
	return nil
}

// OpenPosition adds a new position to the book. The DEX is credited with its
// reserves, and the pair's shallowest positions are evicted if the book
// exceeds its capacity. bc may be nil outside of block execution.
func (k Keeper) OpenPosition(ctx context.Context, bc *types.BlockContext, position types.Position) (types.PositionID, error) {
	if err := position.ValidateOpen(); err != nil {
		return types.PositionID{}, err
	}
	id := position.ID()
	if k.getStore(ctx).Has(PositionKey(id)) {
		return types.PositionID{}, types.ErrDuplicatePosition.Wrapf("position %s", id)
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return types.PositionID{}, err
	}

	pair := position.Phi.Pair
	if err := k.vcbCredit(ctx, types.NewValue(position.Reserves.R1, pair.Asset1)); err != nil {
		return types.PositionID{}, err
	}
	if err := k.vcbCredit(ctx, types.NewValue(position.Reserves.R2, pair.Asset2)); err != nil {
		return types.PositionID{}, err
	}
	if err := k.putPosition(ctx, nil, position); err != nil {
		return types.PositionID{}, err
	}
	if err := k.checkValueConservation(ctx, pair.Asset1, pair.Asset2); err != nil {
		return types.PositionID{}, err
	}

	if bc != nil {
		bc.MarkActive(pair)
		limit := int(params.RecentlyAccessedAssetLimit)
		bc.AddRecentlyAccessedAsset(pair.Asset1, params.FixedCandidates, limit)
		bc.AddRecentlyAccessedAsset(pair.Asset2, params.FixedCandidates, limit)
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePositionOpen,
			sdk.NewAttribute(types.AttributeKeyPositionID, id.String()),
			sdk.NewAttribute(types.AttributeKeyTradingPair, pair.String()),
			sdk.NewAttribute(types.AttributeKeyFee, fmt.Sprintf("%d", position.Phi.Component.Fee)),
			sdk.NewAttribute(types.AttributeKeyP, position.Phi.Component.P.String()),
			sdk.NewAttribute(types.AttributeKeyQ, position.Phi.Component.Q.String()),
			sdk.NewAttribute(types.AttributeKeyReserves1, position.Reserves.R1.String()),
			sdk.NewAttribute(types.AttributeKeyReserves2, position.Reserves.R2.String()),
		),
	)
	k.metrics.PositionsOpened.Inc()

	if _, err := k.enforcePairCapacity(ctx, pair, params.MaxPositionsPerPair); err != nil {
		return types.PositionID{}, err
	}
	return id, nil
}

// ClosePosition stops an open position from trading. Its reserves stay in
// place until withdrawn.
func (k Keeper) ClosePosition(ctx context.Context, id types.PositionID) error {
	return k.closePosition(ctx, id, types.CloseReasonExplicit)
}

func (k Keeper) closePosition(ctx context.Context, id types.PositionID, reason string) error {
	prev, err := k.GetPosition(ctx, id)
	if err != nil {
		return err
	}
	if !prev.State.IsOpened() {
		return types.ErrPositionNotOpen.Wrapf("position %s is %s", id, prev.State)
	}
	next := prev
	next.State = types.ClosedState()
	if err := k.putPosition(ctx, &prev, next); err != nil {
		return err
	}
	k.emitPositionClose(ctx, id, reason)
	return nil
}

func (k Keeper) emitPositionClose(ctx context.Context, id types.PositionID, reason string) {
	eventType := types.EventTypePositionClose
	if reason == types.CloseReasonEvicted {
		eventType = types.EventTypePositionEvicted
	}
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeyPositionID, id.String()),
			sdk.NewAttribute(types.AttributeKeyReason, reason),
		),
	)
	k.metrics.PositionsClosed.WithLabelValues(reason).Inc()
}

// QueueClosePosition defers closing a position to the end of the block, so
// that liquidity opened and closed in the same block still takes part in
// the block's batch swaps.
func (k Keeper) QueueClosePosition(ctx context.Context, bc *types.BlockContext, id types.PositionID) error {
	if _, err := k.GetPosition(ctx, id); err != nil {
		return err
	}
	bc.QueueClose(id)
	return nil
}

// CloseQueuedPositions closes every position queued in bc, in queue order.
// Positions that are no longer open are skipped.
func (k Keeper) CloseQueuedPositions(ctx context.Context, bc *types.BlockContext) error {
	for _, id := range bc.TakeQueuedCloses() {
		position, err := k.GetPosition(ctx, id)
		if err != nil {
			return err
		}
		if !position.State.IsOpened() {
			k.Logger(ctx).Debug("queued position already closed", "position_id", id.String(), "state", position.State.String())
			continue
		}
		if err := k.closePosition(ctx, id, types.CloseReasonQueued); err != nil {
			return err
		}
	}
	return nil
}

// WithdrawPosition claims the reserves of a closed position. Each withdrawal
// advances the withdrawal sequence, so a position may be withdrawn again
// after receiving further value.
func (k Keeper) WithdrawPosition(ctx context.Context, id types.PositionID) (types.Reserves, types.PositionState, error) {
	prev, err := k.GetPosition(ctx, id)
	if err != nil {
		return types.Reserves{}, types.PositionState{}, err
	}
	state, err := prev.State.NextWithdrawal()
	if err != nil {
		return types.Reserves{}, types.PositionState{}, types.ErrPositionNotClosed.Wrapf("position %s is %s", id, prev.State)
	}
	next := prev
	next.State = state
	next.Reserves = types.ZeroReserves()
	if err := k.putPosition(ctx, &prev, next); err != nil {
		return types.Reserves{}, types.PositionState{}, err
	}

	pair := prev.Phi.Pair
	if err := k.vcbDebit(ctx, types.NewValue(prev.Reserves.R1, pair.Asset1)); err != nil {
		return types.Reserves{}, types.PositionState{}, err
	}
	if err := k.vcbDebit(ctx, types.NewValue(prev.Reserves.R2, pair.Asset2)); err != nil {
		return types.Reserves{}, types.PositionState{}, err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePositionWithdraw,
			sdk.NewAttribute(types.AttributeKeyPositionID, id.String()),
			sdk.NewAttribute(types.AttributeKeySequence, fmt.Sprintf("%d", state.Sequence)),
			sdk.NewAttribute(types.AttributeKeyReserves1, prev.Reserves.R1.String()),
			sdk.NewAttribute(types.AttributeKeyReserves2, prev.Reserves.R2.String()),
		),
	)
	return prev.Reserves, state, nil
}

// positionExecution writes a position whose reserves changed during routing.
func (k Keeper) positionExecution(ctx context.Context, prev, next types.Position, dir types.DirectedTradingPair) (types.Position, error) {
	if prev.Reserves.Equal(next.Reserves) {
		return prev, nil
	}
	written, err := k.writePosition(ctx, &prev, next)
	if err != nil {
		return types.Position{}, err
	}
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePositionExecution,
			sdk.NewAttribute(types.AttributeKeyPositionID, written.ID().String()),
			sdk.NewAttribute(types.AttributeKeyTradingPair, written.Phi.Pair.String()),
			sdk.NewAttribute(types.AttributeKeyPrevR1, prev.Reserves.R1.String()),
			sdk.NewAttribute(types.AttributeKeyPrevR2, prev.Reserves.R2.String()),
			sdk.NewAttribute(types.AttributeKeyReserves1, written.Reserves.R1.String()),
			sdk.NewAttribute(types.AttributeKeyReserves2, written.Reserves.R2.String()),
			sdk.NewAttribute(types.AttributeKeyContext, dir.String()),
		),
	)
	return written, nil
}

// putPosition is the single write path for positions: every reserve or
// state change goes through it so the price index, routable-asset graph,
// eviction queue and reserve totals stay consistent with the stored position.
func (k Keeper) putPosition(ctx context.Context, prev *types.Position, next types.Position) error {
	_, err := k.writePosition(ctx, prev, next)
	return err
}

func (k Keeper) writePosition(ctx context.Context, prev *types.Position, next types.Position) (types.Position, error) {
	id := next.ID()
	if prev != nil && prev.ID() != id {
		return types.Position{}, types.ErrInvariantViolation.Wrapf("position %s rewritten as %s", prev.ID(), id)
	}
	if err := next.Reserves.Validate(); err != nil {
		return types.Position{}, types.ErrInvariantViolation.Wrapf("position %s: %s", id, err)
	}
	next = handleLimitOrder(prev, next)

	if prev != nil && prev.State.IsOpened() {
		k.deindexPositionByPrice(ctx, *prev, id)
		k.dequeueForEviction(ctx, *prev, id)
	}
	if next.State.IsOpened() {
		k.indexPositionByPrice(ctx, next, id)
		k.enqueueForEviction(ctx, next, id)
	}
	if err := k.updateAvailableLiquidity(ctx, prev, next); err != nil {
		return types.Position{}, err
	}
	if err := k.updateAggregateReserves(ctx, prev, next); err != nil {
		return types.Position{}, err
	}
	if err := setJSON(k.getStore(ctx), PositionKey(id), next); err != nil {
		return types.Position{}, err
	}
	if prev != nil && prev.State.IsOpened() && !next.State.IsOpened() && next.CloseOnFill && !prev.Reserves.Equal(next.Reserves) {
		k.emitPositionClose(ctx, id, types.CloseReasonFilled)
	}
	return next, nil
}

// handleLimitOrder closes an open close-on-fill position once a fill leaves
// either side of its reserves empty.
func handleLimitOrder(prev *types.Position, next types.Position) types.Position {
	if prev == nil || !next.CloseOnFill || !next.State.IsOpened() {
		return next
	}
	if prev.Reserves.Equal(next.Reserves) {
		return next
	}
	if next.Reserves.R1.IsZero() || next.Reserves.R2.IsZero() {
		next.State = types.ClosedState()
	}
	return next
}
