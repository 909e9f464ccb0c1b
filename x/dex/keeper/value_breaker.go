package keeper

import (
	"context"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/sdex/x/dex/types"
)

// GetValueBalance returns the value circuit breaker balance of an asset: the
// total the DEX has been credited with and not yet paid out.
func (k Keeper) GetValueBalance(ctx context.Context, asset types.AssetID) (math.Int, error) {
	return getAmount(k.getStore(ctx), ValueBalanceKey(asset))
}

// GetAggregateReserves returns the sum of all position reserves of an asset.
func (k Keeper) GetAggregateReserves(ctx context.Context, asset types.AssetID) (math.Int, error) {
	return getAmount(k.getStore(ctx), AggregateReservesKey(asset))
}

// vcbCredit records value entering the DEX.
func (k Keeper) vcbCredit(ctx context.Context, v types.Value) error {
	if v.Amount.IsZero() {
		return nil
	}
	if v.Amount.IsNegative() {
		return types.ErrInvariantViolation.Wrapf("negative vcb credit %s", v)
	}
	store := k.getStore(ctx)
	balance, err := getAmount(store, ValueBalanceKey(v.AssetID))
	if err != nil {
		return err
	}
	balance = balance.Add(v.Amount)
	if err := setAmount(store, ValueBalanceKey(v.AssetID), balance); err != nil {
		return err
	}
	k.emitVCBEvent(ctx, types.EventTypeVCBCredit, v, balance)
	return nil
}

// vcbDebit records value leaving the DEX. Paying out more than was credited
// means value was created somewhere, which is fatal.
func (k Keeper) vcbDebit(ctx context.Context, v types.Value) error {
	if v.Amount.IsZero() {
		return nil
	}
	if v.Amount.IsNegative() {
		return types.ErrInvariantViolation.Wrapf("negative vcb debit %s", v)
	}
	store := k.getStore(ctx)
	balance, err := getAmount(store, ValueBalanceKey(v.AssetID))
	if err != nil {
		return err
	}
	if balance.LT(v.Amount) {
		k.metrics.CircuitBreakerTrips.WithLabelValues(v.AssetID.String()).Inc()
		return types.ErrValueCircuitBreaker.Wrapf("debit of %s exceeds balance %s of %s", v.Amount, balance, v.AssetID)
	}
	balance = balance.Sub(v.Amount)
	if err := setAmount(store, ValueBalanceKey(v.AssetID), balance); err != nil {
		return err
	}
	k.emitVCBEvent(ctx, types.EventTypeVCBDebit, v, balance)
	return nil
}

func (k Keeper) emitVCBEvent(ctx context.Context, eventType string, v types.Value, balance math.Int) {
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeyAssetID, v.AssetID.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, v.Amount.String()),
			sdk.NewAttribute(types.AttributeKeyBalance, balance.String()),
		),
	)
	k.metrics.ValueBalance.WithLabelValues(v.AssetID.String()).Set(approxFloat(balance))
}

// updateAggregateReserves moves a position's contribution to the per-asset
// reserve totals from prev to next.
func (k Keeper) updateAggregateReserves(ctx context.Context, prev *types.Position, next types.Position) error {
	store := k.getStore(ctx)
	pair := next.Phi.Pair
	deltas := [2]struct {
		asset types.AssetID
		prev  math.Int
		next  math.Int
	}{
		{asset: pair.Asset1, prev: math.ZeroInt(), next: next.Reserves.R1},
		{asset: pair.Asset2, prev: math.ZeroInt(), next: next.Reserves.R2},
	}
	if prev != nil {
		deltas[0].prev = prev.Reserves.R1
		deltas[1].prev = prev.Reserves.R2
	}
	for _, d := range deltas {
		if d.prev.Equal(d.next) {
			continue
		}
		total, err := getAmount(store, AggregateReservesKey(d.asset))
		if err != nil {
			return err
		}
		total = total.Sub(d.prev).Add(d.next)
		if total.IsNegative() {
			return types.ErrInvariantViolation.Wrapf("aggregate reserves of %s would be negative", d.asset)
		}
		if err := setAmount(store, AggregateReservesKey(d.asset), total); err != nil {
			return err
		}
	}
	return nil
}

// checkValueConservation verifies that positions never hold more of an asset
// than the DEX has been credited with.
func (k Keeper) checkValueConservation(ctx context.Context, assets ...types.AssetID) error {
	store := k.getStore(ctx)
	for _, asset := range assets {
		total, err := getAmount(store, AggregateReservesKey(asset))
		if err != nil {
			return err
		}
		balance, err := getAmount(store, ValueBalanceKey(asset))
		if err != nil {
			return err
		}
		if total.GT(balance) {
			return types.ErrValueCircuitBreaker.Wrapf("positions hold %s of %s but the dex was credited %s", total, asset, balance)
		}
	}
	return nil
}

// CheckAllValueConservation runs the conservation check over every asset the
// DEX holds reserves of.
func (k Keeper) CheckAllValueConservation(ctx context.Context) error {
	var assets []types.AssetID
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), AggregateReservesKeyPrefix)
	for ; iter.Valid(); iter.Next() {
		asset, err := types.AssetIDFromBytes(iter.Key()[len(AggregateReservesKeyPrefix):])
		if err != nil {
			iter.Close()
			return err
		}
		assets = append(assets, asset)
	}
	iter.Close()
	return k.checkValueConservation(ctx, assets...)
}

// IterateValueBalances calls cb for every nonzero circuit breaker balance in asset order.
func (k Keeper) IterateValueBalances(ctx context.Context, cb func(types.Value) (stop bool)) error {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), ValueBalanceKeyPrefix)
	defer iter.Close()
	for ; iter.Valid(); iter.Next() {
		asset, err := types.AssetIDFromBytes(iter.Key()[len(ValueBalanceKeyPrefix):])
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
