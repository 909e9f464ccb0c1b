package keeper

import (
	"context"
	"fmt"

	storetypes "cosmossdk.io/store/types"

	"github.com/paw-chain/sdex/x/dex/types"
)

// quote is a directed pair a position trades on and the price it offers.
type quote struct {
	pair  types.DirectedTradingPair
	price types.Price
}

// indexedDirections returns the directions a position quotes. Positions
// whose fee leaves no output are not quoted.
func indexedDirections(position types.Position) []quote {
	var out []quote
	for _, pair := range []types.DirectedTradingPair{position.Phi.Pair.Forward(), position.Phi.Pair.Backward()} {
		price, ok := position.Phi.EffectivePriceFor(pair.Start)
		if !ok {
			continue
		}
		out = append(out, quote{pair: pair, price: price})
	}
	return out
}

func (k Keeper) indexPositionByPrice(ctx context.Context, position types.Position, id types.PositionID) {
	store := k.getStore(ctx)
	for _, d := range indexedDirections(position) {
		store.Set(PriceIndexKey(d.pair, d.price, id), indexPresent)
	}
}

func (k Keeper) deindexPositionByPrice(ctx context.Context, position types.Position, id types.PositionID) {
	store := k.getStore(ctx)
	for _, d := range indexedDirections(position) {
		store.Delete(PriceIndexKey(d.pair, d.price, id))
	}
}

// positionCursor walks a directed pair's price index in ascending
// (price, id) order. Each step reopens the iterator after the last key
// returned, so the store may be written between steps.
type positionCursor struct {
	k       Keeper
	ctx     context.Context
	pair    types.DirectedTradingPair
	prefix  []byte
	lastKey []byte
}

func (k Keeper) newPositionCursor(ctx context.Context, pair types.DirectedTradingPair) *positionCursor {
	return &positionCursor{k: k, ctx: ctx, pair: pair, prefix: PriceIndexPrefix(pair)}
}

// Next returns the next open position able to pay out the pair's end asset,
// skipping positions whose reserves of it are empty.
func (c *positionCursor) Next() (types.Position, types.PositionID, bool, error) {
	store := c.k.getStore(c.ctx)
	for {
		start := c.prefix
		if c.lastKey != nil {
			start = append(append([]byte{}, c.lastKey...), 0x00)
		}
		iter := store.Iterator(start, storetypes.PrefixEndBytes(c.prefix))
		if !iter.Valid() {
			iter.Close()
			return types.Position{}, types.PositionID{}, false, nil
		}
		key := append([]byte{}, iter.Key()...)
		iter.Close()
		c.lastKey = key

		id, err := types.PositionIDFromBytes(key[len(key)-32:])
		if err != nil {
			return types.Position{}, types.PositionID{}, false, err
		}
		position, found, err := c.k.getPosition(c.ctx, id)
		if err != nil {
			return types.Position{}, types.PositionID{}, false, err
		}
		if !found {
			return types.Position{}, types.PositionID{}, false, types.ErrInvariantViolation.Wrapf(
				"price index references missing position %s", id)
		}
		reserve, _ := position.ReservesFor(c.pair.End)
		if reserve.IsZero() {
			continue
		}
		return position, id, true, nil
	}
}

// BestPosition returns the cheapest open position on pair with liquidity.
func (k Keeper) BestPosition(ctx context.Context, pair types.DirectedTradingPair) (types.Position, bool, error) {
	position, _, found, err := k.newPositionCursor(ctx, pair).Next()
	return position, found, err
}

// bestPrice returns the effective price of the cheapest position on pair.
func (k Keeper) bestPrice(ctx context.Context, pair types.DirectedTradingPair) (types.Price, bool, error) {
	position, found, err := k.BestPosition(ctx, pair)
	if err != nil || !found {
		return types.Price{}, false, err
	}
	price, ok := position.Phi.EffectivePriceFor(pair.Start)
	if !ok {
		return types.Price{}, false, fmt.Errorf("indexed position %s has no effective price", position.ID())
	}
	return price, true, nil
}

// PositionsByPrice returns up to limit open positions on pair with liquidity,
// cheapest first. A zero limit returns all of them.
func (k Keeper) PositionsByPrice(ctx context.Context, pair types.DirectedTradingPair, limit int) ([]types.Position, error) {
	cursor := k.newPositionCursor(ctx, pair)
	var positions []types.Position
	for limit == 0 || len(positions) < limit {
		position, _, found, err := cursor.Next()
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		positions = append(positions, position)
	}
	return positions, nil
}
