package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/sdex/x/dex/types"
)

// RegisterInvariants registers all DEX invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "value-conservation", ValueConservationInvariant(k))
	ir.RegisterRoute(types.ModuleName, "aggregate-reserves", AggregateReservesInvariant(k))
	ir.RegisterRoute(types.ModuleName, "price-index", PriceIndexInvariant(k))
}

// AllInvariants runs all invariants of the DEX module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := ValueConservationInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		res, stop = AggregateReservesInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return PriceIndexInvariant(k)(ctx)
	}
}

// ValueConservationInvariant checks that positions never hold more of an
// asset than the circuit breaker balance.
func ValueConservationInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		err := k.CheckAllValueConservation(ctx)
		msg := "value circuit breaker balances cover all reserves\n"
		if err != nil {
			msg = err.Error() + "\n"
		}
		return sdk.FormatInvariant(types.ModuleName, "value-conservation", msg), err != nil
	}
}

// AggregateReservesInvariant recomputes the per-asset reserve totals from
// the positions and compares them with the stored totals.
func AggregateReservesInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		totals := make(map[types.AssetID]math.Int)
		add := func(asset types.AssetID, amount math.Int) {
			if current, ok := totals[asset]; ok {
				totals[asset] = current.Add(amount)
				return
			}
			totals[asset] = amount
		}
		if err := k.IteratePositions(ctx, func(_ types.PositionID, position types.Position) bool {
			add(position.Phi.Pair.Asset1, position.Reserves.R1)
			add(position.Phi.Pair.Asset2, position.Reserves.R2)
			return false
		}); err != nil {
			return sdk.FormatInvariant(types.ModuleName, "aggregate-reserves", err.Error()), true
		}

		assets := make([]types.AssetID, 0, len(totals))
		for asset := range totals {
			assets = append(assets, asset)
		}
		types.SortAssetIDs(assets)
		for _, asset := range assets {
			stored, err := k.GetAggregateReserves(ctx, asset)
			if err != nil {
				return sdk.FormatInvariant(types.ModuleName, "aggregate-reserves", err.Error()), true
			}
			if !stored.Equal(totals[asset]) {
				count++
				msg += fmt.Sprintf("asset %s: stored aggregate %s != sum of reserves %s\n", asset, stored, totals[asset])
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "aggregate-reserves",
			fmt.Sprintf("found %d assets with mismatched aggregate reserves\n%s", count, msg),
		), broken
	}
}

// PriceIndexInvariant checks that every open routable position is indexed
// in both directions and that no closed position is.
func PriceIndexInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		store := k.getStore(ctx)
		if err := k.IteratePositions(ctx, func(id types.PositionID, position types.Position) bool {
			for _, q := range indexedDirections(position) {
				indexed := store.Has(PriceIndexKey(q.pair, q.price, id))
				if indexed != position.State.IsOpened() {
					count++
					msg += fmt.Sprintf("position %s (%s): indexed=%t on %s\n", id, position.State, indexed, q.pair)
				}
			}
			return false
		}); err != nil {
			return sdk.FormatInvariant(types.ModuleName, "price-index", err.Error()), true
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "price-index",
			fmt.Sprintf("found %d inconsistent price index entries\n%s", count, msg),
		), broken
	}
}
