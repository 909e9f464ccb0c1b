package types

import (
	"slices"
)

// BlockContext carries the DEX inputs and outputs scoped to a single block.
// The block pipeline creates one per block and passes it by reference to
// every step; nothing in it survives the block.
type BlockContext struct {
	Height              uint64
	EpochStartingHeight uint64

	swapFlows        map[TradingPair]SwapFlow
	queuedCloses     []PositionID
	queued           map[PositionID]struct{}
	activePairs      map[TradingPair]struct{}
	recentlyAccessed map[AssetID]struct{}
	outputs          map[TradingPair]BatchSwapOutputData
	candlesticks     map[DirectedTradingPair]*Candlestick
}

// NewBlockContext returns an empty context for height.
func NewBlockContext(height, epochStartingHeight uint64) *BlockContext {
	return &BlockContext{
		Height:              height,
		EpochStartingHeight: epochStartingHeight,
		swapFlows:           make(map[TradingPair]SwapFlow),
		queued:              make(map[PositionID]struct{}),
		activePairs:         make(map[TradingPair]struct{}),
		recentlyAccessed:    make(map[AssetID]struct{}),
		outputs:             make(map[TradingPair]BatchSwapOutputData),
		candlesticks:        make(map[DirectedTradingPair]*Candlestick),
	}
}

// PairFlow is a trading pair with its accumulated flow.
type PairFlow struct {
	Pair TradingPair
	Flow SwapFlow
}

// AccumulateSwapFlow adds flow to the pair's running total.
func (bc *BlockContext) AccumulateSwapFlow(pair TradingPair, flow SwapFlow) {
	current, ok := bc.swapFlows[pair]
	if !ok {
		current = ZeroSwapFlow()
	}
	bc.swapFlows[pair] = current.Add(flow)
}

// SwapFlows returns the accumulated flows in canonical pair order.
func (bc *BlockContext) SwapFlows() []PairFlow {
	flows := make([]PairFlow, 0, len(bc.swapFlows))
	for pair, flow := range bc.swapFlows {
		flows = append(flows, PairFlow{Pair: pair, Flow: flow})
	}
	slices.SortFunc(flows, func(a, b PairFlow) int { return a.Pair.Compare(b.Pair) })
	return flows
}

// QueueClose schedules id for closure at the end of the block. Queuing the
// same id twice has no further effect.
func (bc *BlockContext) QueueClose(id PositionID) {
	if _, ok := bc.queued[id]; ok {
		return
	}
	bc.queued[id] = struct{}{}
	bc.queuedCloses = append(bc.queuedCloses, id)
}

// TakeQueuedCloses returns the queued ids in queue order and clears the queue.
func (bc *BlockContext) TakeQueuedCloses() []PositionID {
	ids := bc.queuedCloses
	bc.queuedCloses = nil
	bc.queued = make(map[PositionID]struct{})
	return ids
}

// MarkActive records that pair saw position activity in this block.
func (bc *BlockContext) MarkActive(pair TradingPair) {
	bc.activePairs[pair] = struct{}{}
}

// ActivePairs returns the active pairs in canonical order.
func (bc *BlockContext) ActivePairs() []TradingPair {
	pairs := make([]TradingPair, 0, len(bc.activePairs))
	for pair := range bc.activePairs {
		pairs = append(pairs, pair)
	}
	slices.SortFunc(pairs, TradingPair.Compare)
	return pairs
}

// AddRecentlyAccessedAsset makes asset an arbitrage candidate for this
// block, unless it is already a fixed candidate or limit assets are tracked.
func (bc *BlockContext) AddRecentlyAccessedAsset(asset AssetID, fixed []AssetID, limit int) {
	if len(bc.recentlyAccessed) >= limit || slices.Contains(fixed, asset) {
		return
	}
	bc.recentlyAccessed[asset] = struct{}{}
}

// RecentlyAccessedAssets returns the tracked assets in ascending order.
func (bc *BlockContext) RecentlyAccessedAssets() []AssetID {
	ids := make([]AssetID, 0, len(bc.recentlyAccessed))
	for id := range bc.recentlyAccessed {
		ids = append(ids, id)
	}
	SortAssetIDs(ids)
	return ids
}

// SetOutput records a pair's settlement for the compact block.
func (bc *BlockContext) SetOutput(output BatchSwapOutputData) {
	bc.outputs[output.TradingPair] = output
}

// Outputs returns the block's settlements in canonical pair order.
func (bc *BlockContext) Outputs() []BatchSwapOutputData {
	outputs := make([]BatchSwapOutputData, 0, len(bc.outputs))
	for _, o := range bc.outputs {
		outputs = append(outputs, o)
	}
	slices.SortFunc(outputs, func(a, b BatchSwapOutputData) int { return a.TradingPair.Compare(b.TradingPair) })
	return outputs
}

// RecordExecution folds an execution into the candlestick of its direction.
func (bc *BlockContext) RecordExecution(pair DirectedTradingPair, execution SwapExecution) {
	stick, ok := bc.candlesticks[pair]
	if !ok {
		stick = NewCandlestick(bc.Height)
		bc.candlesticks[pair] = stick
	}
	stick.Record(execution)
}

// PairCandlestick is a directed pair with its block candlestick.
type PairCandlestick struct {
	Pair        DirectedTradingPair
	Candlestick Candlestick
}

// Candlesticks returns the block's non-empty candlesticks in pair order.
func (bc *BlockContext) Candlesticks() []PairCandlestick {
	out := make([]PairCandlestick, 0, len(bc.candlesticks))
	for pair, stick := range bc.candlesticks {
		if stick.IsEmpty() {
			continue
		}
		out = append(out, PairCandlestick{Pair: pair, Candlestick: *stick})
	}
	slices.SortFunc(out, func(a, b PairCandlestick) int { return a.Pair.Compare(b.Pair) })
	return out
}
