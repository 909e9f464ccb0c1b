package keeper

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/paw-chain/sdex/telemetry"
	"github.com/paw-chain/sdex/x/dex/types"
	"github.com/paw-chain/sdex/x/shared/abci"
)

// BlockPipeline owns the block context between BeginBlock and EndBlock.
type BlockPipeline struct {
	k       *Keeper
	current *types.BlockContext
}

// NewBlockPipeline returns a pipeline driving k.
func NewBlockPipeline(k *Keeper) *BlockPipeline {
	return &BlockPipeline{k: k}
}

// Begin starts a new block, discarding any context left by an aborted block.
func (p *BlockPipeline) Begin(ctx context.Context) *types.BlockContext {
	p.current = p.k.BeginBlocker(ctx)
	return p.current
}

// Current returns the open block context, or nil between blocks.
func (p *BlockPipeline) Current() *types.BlockContext {
	return p.current
}

// Finish runs the end-of-block pipeline and closes the block context.
func (p *BlockPipeline) Finish(ctx context.Context) error {
	bc := p.current
	if bc == nil {
		bc = p.k.BeginBlocker(ctx)
	}
	p.current = nil
	return p.k.EndBlocker(ctx, bc)
}

// BeginBlocker creates the block context for the current height.
func (k Keeper) BeginBlocker(ctx context.Context) *types.BlockContext {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	height := uint64(sdkCtx.BlockHeight())
	var epochStart uint64
	if k.epochSource != nil {
		epochStart = k.epochSource.CurrentEpochStartHeight(ctx)
	}
	return types.NewBlockContext(height, epochStart)
}

// EndBlocker settles the block. Fatal errors are returned and must halt the
// block; anything else is logged and processing continues.
func (k Keeper) EndBlocker(ctx context.Context, bc *types.BlockContext) error {
	start := time.Now()
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	_, span := telemetry.StartBlockSpan(ctx, sdkCtx.BlockHeight())
	defer span.End()

	if err := k.ExecuteBlock(ctx, bc); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	k.metrics.EndBlockLatency.Observe(time.Since(start).Seconds())
	return nil
}

func classifyBlockerError(err error) abci.ErrorSeverity {
	if types.IsFatal(err) {
		return abci.SeverityCritical
	}
	return abci.SeverityMedium
}

// ExecuteBlock runs the end-of-block pipeline over bc: batch settlement of
// every pair in canonical order, queued closes, arbitrage, eviction of
// active pairs, candlesticks and the value conservation check.
func (k Keeper) ExecuteBlock(ctx context.Context, bc *types.BlockContext) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	handler := abci.NewBlockerErrorHandler(sdkCtx, types.ModuleName, classifyBlockerError)

	params, err := k.GetParams(ctx)
	if err != nil {
		return handler.HandleError("params", abci.SeverityCritical, err)
	}
	routing := params.RoutingParams()

	flows := bc.SwapFlows()
	for _, pf := range flows {
		_, span := telemetry.StartStageSpan(ctx, "batch_swap", attribute.String("dex.pair", pf.Pair.String()))
		_, err := k.HandleBatchSwaps(ctx, bc, pf.Pair, pf.Flow,
			routing.WithExtraCandidates(pf.Pair.Asset1, pf.Pair.Asset2),
			params.MaxExecutionBudget,
		)
		telemetry.RecordError(span, err)
		span.End()
		if err != nil {
			return handler.HandleError("batch_swap", abci.SeverityCritical, err)
		}
	}

	if err := k.CloseQueuedPositions(ctx, bc); err != nil {
		return handler.HandleError("close_queued_positions", abci.SeverityCritical, err)
	}

	if params.ArbitrageEnabled {
		arbParams := types.RoutingParams{
			MaxHops:               params.MaxHops + 2,
			DynamicCandidateLimit: params.DynamicCandidateLimit,
		}
		arbParams = arbParams.
			WithExtraCandidates(params.FixedCandidates...).
			WithExtraCandidates(bc.RecentlyAccessedAssets()...).
			WithPriceLimit(types.OnePrice())

		_, span := telemetry.StartStageSpan(ctx, "arbitrage")
		rounds, err := k.arbitrageUntilExhausted(ctx, bc, params.NativeAsset, arbParams, params.MaxExecutionBudget)
		span.SetAttributes(attribute.Int("dex.arbitrage_rounds", rounds))
		telemetry.RecordError(span, err)
		span.End()
		if err := handler.Handle("arbitrage", err); err != nil {
			return err
		}
	}

	if _, err := k.EvictPositions(ctx, bc); err != nil {
		if err := handler.Handle("evict_positions", err); err != nil {
			return err
		}
	}

	if err := k.FlushCandlesticks(ctx, bc); err != nil {
		handler.WrapError("candlesticks", abci.SeverityLow, err)
	}

	if err := k.CheckAllValueConservation(ctx); err != nil {
		return handler.HandleError("value_conservation", abci.SeverityCritical, err)
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeDexEndBlock,
			sdk.NewAttribute(types.AttributeKeyHeight, fmt.Sprintf("%d", bc.Height)),
			sdk.NewAttribute(types.AttributeKeyBatches, fmt.Sprintf("%d", len(flows))),
		),
	)
	return nil
}

// arbitrageUntilExhausted repeats Arbitrage while it finds profit, since one
// run stops at the execution budget. It returns the number of profitable
// rounds, at most types.MaxArbitrageRounds.
func (k Keeper) arbitrageUntilExhausted(
	ctx context.Context,
	bc *types.BlockContext,
	arbToken types.AssetID,
	params types.RoutingParams,
	executionBudget uint32,
) (int, error) {
	for round := 0; round < types.MaxArbitrageRounds; round++ {
		burned, err := k.Arbitrage(ctx, bc, arbToken, params, executionBudget)
		if err != nil {
			return round, err
		}
		if burned == nil {
			return round, nil
		}
	}
	k.Logger(ctx).Info("arbitrage round limit reached", "rounds", types.MaxArbitrageRounds)
	return types.MaxArbitrageRounds, nil
}
