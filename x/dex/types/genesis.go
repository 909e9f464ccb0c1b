package types

// GenesisState is the DEX genesis state. Value circuit breaker balances are
// derived from the positions on import.
type GenesisState struct {
	Params    Params     `json:"params"`
	Positions []Position `json:"positions"`
	// BurnedTotals are the cumulative arbitrage burns per asset.
	BurnedTotals []Value `json:"burned_totals"`
}

// DefaultGenesis returns the default genesis state for the DEX module.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:       DefaultParams(),
		Positions:    []Position{},
		BurnedTotals: []Value{},
	}
}

// Validate ensures the genesis state is well-formed.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	seen := make(map[PositionID]struct{}, len(gs.Positions))
	for i, position := range gs.Positions {
		if err := position.Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("position %d: %s", i, err)
		}
		id := position.ID()
		if _, dup := seen[id]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate position %s", id)
		}
		seen[id] = struct{}{}
	}

	burned := make(map[AssetID]struct{}, len(gs.BurnedTotals))
	for _, v := range gs.BurnedTotals {
		if v.Amount.IsNil() || v.Amount.IsNegative() {
			return ErrInvalidGenesis.Wrapf("invalid burned total for %s", v.AssetID)
		}
		if _, dup := burned[v.AssetID]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate burned total for %s", v.AssetID)
		}
		burned[v.AssetID] = struct{}{}
	}
	return nil
}
