package keeper

import (
	"context"

	"github.com/paw-chain/sdex/x/dex/types"
)

// FlushCandlesticks persists the block's candlesticks.
func (k Keeper) FlushCandlesticks(ctx context.Context, bc *types.BlockContext) error {
	store := k.getStore(ctx)
	for _, pc := range bc.Candlesticks() {
		if err := setJSON(store, CandlestickKey(pc.Pair, pc.Candlestick.Height), pc.Candlestick); err != nil {
			return err
		}
	}
	return nil
}

// GetCandlestick returns the candlestick of dir at height, if trades executed.
func (k Keeper) GetCandlestick(ctx context.Context, dir types.DirectedTradingPair, height uint64) (types.Candlestick, bool, error) {
	var stick types.Candlestick
	found, err := getJSON(k.getStore(ctx), CandlestickKey(dir, height), &stick)
	return stick, found, err
}
