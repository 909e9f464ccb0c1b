package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/sdex/x/dex/types"
)

// VCBCreditForTest exposes the circuit breaker credit for white-box tests.
func VCBCreditForTest(k *Keeper, ctx sdk.Context, v types.Value) error {
	return k.vcbCredit(ctx, v)
}

// VCBDebitForTest exposes the circuit breaker debit for white-box tests.
func VCBDebitForTest(k *Keeper, ctx sdk.Context, v types.Value) error {
	return k.vcbDebit(ctx, v)
}

// EvictionQueueForTest returns the ids queued for eviction on dir, shallowest first.
func EvictionQueueForTest(k *Keeper, ctx sdk.Context, dir types.DirectedTradingPair) ([]types.PositionID, error) {
	return k.evictionQueue(ctx, dir)
}

// CorruptAggregateReservesForTest overwrites the stored reserve total of asset.
func CorruptAggregateReservesForTest(k *Keeper, ctx sdk.Context, v types.Value) error {
	return setAmount(k.getStore(ctx), AggregateReservesKey(v.AssetID), v.Amount)
}
