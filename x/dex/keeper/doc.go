// Package keeper implements the DEX module keeper: a batch-settled order
// book of concentrated liquidity positions.
//
// # Core Functionality
//
// Positions: each position is a linear trading function p*R1 + q*R2 = k with
// a fee, holding reserves of two assets. Positions are opened, closed
// (immediately or at the end of the block) and withdrawn, possibly several
// times. All position writes go through a single path that keeps the price
// index, the routable-asset graph, the eviction queue and the per-asset
// reserve totals consistent.
//
// Batch swaps: swap demand is accumulated per trading pair for the whole
// block and settled once in EndBlock. Each direction is routed by repeated
// path search and route fills that consume positions in strict price order,
// possibly across several hops. Whatever cannot be filled is returned.
//
// Arbitrage: after settlement the native asset is routed back into itself
// below a price of one using a flash loan, and the surplus is burned.
//
// Value circuit breaker: every value entering or leaving the DEX is
// tracked per asset. Positions may never hold more than the DEX was
// credited with; a violation aborts the block.
//
// # Key Types
//
// Keeper: module keeper over a single KVStore.
//
// BlockPipeline: owns the types.BlockContext between BeginBlock and EndBlock.
//
// Path, ExecutionBudget: routing state.
//
// # Usage Patterns
//
// Opening a position during a block:
//
//	position, err := types.NewPositionWithRand(nil, pair, fee, p, q, reserves)
//	id, err := k.OpenPosition(ctx, pipeline.Current(), position)
//
// Adding swap demand:
//
//	err := k.AddSwapFlow(ctx, pipeline.Current(), pair, types.NewSwapFlow(delta1, delta2))
//
// Reading a settlement:
//
//	output, err := k.GetOutputData(ctx, height, pair)
//	lambda1, lambda2 := output.ProRataOutputs(myDelta1, myDelta2)
package keeper
