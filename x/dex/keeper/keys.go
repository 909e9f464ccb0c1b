package keeper

import (
	"encoding/binary"

	"github.com/paw-chain/sdex/x/dex/types"
)

var (
	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x01}

	// PositionKeyPrefix is the prefix for positions by id
	PositionKeyPrefix = []byte{0x02}

	// PriceIndexKeyPrefix orders open positions by effective price per directed pair
	PriceIndexKeyPrefix = []byte{0x03}

	// RoutableAssetsKeyPrefix orders counter-assets by descending liquidity per asset
	RoutableAssetsKeyPrefix = []byte{0x04}

	// AvailableLiquidityKeyPrefix holds the aggregate liquidity per directed pair
	AvailableLiquidityKeyPrefix = []byte{0x05}

	// EvictionQueueKeyPrefix orders open positions by inventory per directed pair
	EvictionQueueKeyPrefix = []byte{0x06}

	// ValueBalanceKeyPrefix holds the value circuit breaker balance per asset
	ValueBalanceKeyPrefix = []byte{0x07}

	// AggregateReservesKeyPrefix holds the sum of position reserves per asset
	AggregateReservesKeyPrefix = []byte{0x08}

	// OutputDataKeyPrefix holds batch swap output data by height and pair
	OutputDataKeyPrefix = []byte{0x09}

	// SwapExecutionKeyPrefix holds swap executions by height and directed pair
	SwapExecutionKeyPrefix = []byte{0x0A}

	// ArbExecutionKeyPrefix holds arbitrage executions by height
	ArbExecutionKeyPrefix = []byte{0x0B}

	// BurnedTotalKeyPrefix holds cumulative arbitrage burns per asset
	BurnedTotalKeyPrefix = []byte{0x0C}

	// CandlestickKeyPrefix holds candlesticks by directed pair and height
	CandlestickKeyPrefix = []byte{0x0D}
)

// indexPresent is the value stored under index keys.
var indexPresent = []byte{0x01}

func heightBytes(height uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, height)
	return bz
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	key := make([]byte, 0, n)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

// PositionKey returns the store key for a position
func PositionKey(id types.PositionID) []byte {
	return concat(PositionKeyPrefix, id[:])
}

// PriceIndexPrefix returns the prefix of a directed pair's price index
func PriceIndexPrefix(pair types.DirectedTradingPair) []byte {
	return concat(PriceIndexKeyPrefix, pair.Bytes())
}

// PriceIndexKey returns prefix | start | end | price | id
func PriceIndexKey(pair types.DirectedTradingPair, price types.Price, id types.PositionID) []byte {
	return concat(PriceIndexPrefix(pair), price.IndexKey(), id[:])
}

// RoutableAssetsPrefix returns the prefix of the assets routable from an asset
func RoutableAssetsPrefix(from types.AssetID) []byte {
	return concat(RoutableAssetsKeyPrefix, from[:])
}

// RoutableAssetKey returns prefix | from | ^liquidity | to, so that a forward
// scan yields the deepest counter-asset first.
func RoutableAssetKey(from types.AssetID, liquidity []byte, to types.AssetID) []byte {
	inverted := make([]byte, len(liquidity))
	for i, b := range liquidity {
		inverted[i] = ^b
	}
	return concat(RoutableAssetsPrefix(from), inverted, to[:])
}

// AvailableLiquidityKey returns the key of the liquidity obtainable as to by selling from
func AvailableLiquidityKey(from, to types.AssetID) []byte {
	return concat(AvailableLiquidityKeyPrefix, from[:], to[:])
}

// EvictionQueuePrefix returns the prefix of a directed pair's eviction queue
func EvictionQueuePrefix(pair types.DirectedTradingPair) []byte {
	return concat(EvictionQueueKeyPrefix, pair.Bytes())
}

// EvictionQueueKey returns prefix | start | end | inventory | id
func EvictionQueueKey(pair types.DirectedTradingPair, inventory []byte, id types.PositionID) []byte {
	return concat(EvictionQueuePrefix(pair), inventory, id[:])
}

// ValueBalanceKey returns the circuit breaker balance key of an asset
func ValueBalanceKey(asset types.AssetID) []byte {
	return concat(ValueBalanceKeyPrefix, asset[:])
}

// AggregateReservesKey returns the aggregate reserves key of an asset
func AggregateReservesKey(asset types.AssetID) []byte {
	return concat(AggregateReservesKeyPrefix, asset[:])
}

// OutputDataKey returns prefix | height | pair
func OutputDataKey(height uint64, pair types.TradingPair) []byte {
	return concat(OutputDataKeyPrefix, heightBytes(height), pair.Bytes())
}

// SwapExecutionKey returns prefix | height | start | end
func SwapExecutionKey(height uint64, pair types.DirectedTradingPair) []byte {
	return concat(SwapExecutionKeyPrefix, heightBytes(height), pair.Bytes())
}

// ArbExecutionKey returns prefix | height
func ArbExecutionKey(height uint64) []byte {
	return concat(ArbExecutionKeyPrefix, heightBytes(height))
}

// BurnedTotalKey returns the cumulative burn key of an asset
func BurnedTotalKey(asset types.AssetID) []byte {
	return concat(BurnedTotalKeyPrefix, asset[:])
}

// CandlestickKey returns prefix | start | end | height
func CandlestickKey(pair types.DirectedTradingPair, height uint64) []byte {
	return concat(CandlestickKeyPrefix, pair.Bytes(), heightBytes(height))
}
