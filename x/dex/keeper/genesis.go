package keeper

import (
	"context"
	"fmt"

	"github.com/paw-chain/sdex/x/dex/types"
)

// InitGenesis initializes the dex module's state from a genesis state. The
// value circuit breaker is seeded with the reserves of the imported positions.
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	for _, position := range genState.Positions {
		pair := position.Phi.Pair
		if err := k.vcbCredit(ctx, types.NewValue(position.Reserves.R1, pair.Asset1)); err != nil {
			return fmt.Errorf("failed to credit position %s: %w", position.ID(), err)
		}
		if err := k.vcbCredit(ctx, types.NewValue(position.Reserves.R2, pair.Asset2)); err != nil {
			return fmt.Errorf("failed to credit position %s: %w", position.ID(), err)
		}
		if err := k.putPosition(ctx, nil, position); err != nil {
			return fmt.Errorf("failed to set position %s: %w", position.ID(), err)
		}
	}

	for _, burned := range genState.BurnedTotals {
		if err := k.addBurnedTotal(ctx, burned); err != nil {
			return fmt.Errorf("failed to set burned total for %s: %w", burned.AssetID, err)
		}
	}
	return k.CheckAllValueConservation(ctx)
}

// ExportGenesis exports the dex module's state to a genesis state
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	genState := &types.GenesisState{
		Params:       params,
		Positions:    []types.Position{},
		BurnedTotals: []types.Value{},
	}
	if err := k.IteratePositions(ctx, func(_ types.PositionID, position types.Position) bool {
		genState.Positions = append(genState.Positions, position)
		return false
	}); err != nil {
		return nil, fmt.Errorf("failed to export positions: %w", err)
	}
	if err := k.IterateBurnedTotals(ctx, func(v types.Value) bool {
		genState.BurnedTotals = append(genState.BurnedTotals, v)
		return false
	}); err != nil {
		return nil, fmt.Errorf("failed to export burned totals: %w", err)
	}
	return genState, nil
}
