package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestParams_Validate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{name: "no native asset", mutate: func(p *Params) { p.NativeAsset = AssetID{} }},
		{name: "zero max hops", mutate: func(p *Params) { p.MaxHops = 0 }},
		{name: "max hops above limit", mutate: func(p *Params) { p.MaxHops = MaxHopsLimit + 1 }},
		{name: "zero positions per pair", mutate: func(p *Params) { p.MaxPositionsPerPair = 0 }},
		{name: "zero execution budget", mutate: func(p *Params) { p.MaxExecutionBudget = 0 }},
		{name: "unset candidate", mutate: func(p *Params) { p.FixedCandidates = append(p.FixedCandidates, AssetID{}) }},
		{name: "duplicate candidate", mutate: func(p *Params) { p.FixedCandidates = append(p.FixedCandidates, p.NativeAsset) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := DefaultParams()
			tc.mutate(&params)
			require.ErrorIs(t, params.Validate(), ErrInvalidParams)
		})
	}
}

func TestParams_RoutingParams(t *testing.T) {
	params := DefaultParams()
	routing := params.RoutingParams()
	require.Equal(t, params.MaxHops, routing.MaxHops)
	require.Equal(t, params.FixedCandidates, routing.FixedCandidates)
	require.Nil(t, routing.PriceLimit)

	// Derived parameters do not alias the originals.
	routing.FixedCandidates[0] = AssetIDFromDenom("other")
	require.Equal(t, AssetIDFromDenom(DefaultNativeDenom), params.FixedCandidates[0])

	limited := routing.WithPriceLimit(OnePrice())
	require.NotNil(t, limited.PriceLimit)
	require.Nil(t, routing.PriceLimit)
}

func TestGenesisState_Validate(t *testing.T) {
	require.NoError(t, DefaultGenesis().Validate())

	gm, gn := AssetIDFromDenom("gm"), AssetIDFromDenom("gn")
	position, err := NewPosition(PositionNonce{1}, NewDirectedTradingPair(gm, gn), 0,
		math.OneInt(), math.OneInt(), NewReserves(math.NewInt(10), math.ZeroInt()))
	require.NoError(t, err)

	gs := DefaultGenesis()
	gs.Positions = []Position{position}
	gs.BurnedTotals = []Value{NewValue(math.NewInt(3), gm)}
	require.NoError(t, gs.Validate())

	dup := *gs
	dup.Positions = []Position{position, position}
	require.ErrorIs(t, dup.Validate(), ErrInvalidGenesis)

	negative := *gs
	negative.BurnedTotals = []Value{NewValue(math.NewInt(-1), gm)}
	require.ErrorIs(t, negative.Validate(), ErrInvalidGenesis)

	dupBurn := *gs
	dupBurn.BurnedTotals = []Value{NewValue(math.OneInt(), gm), NewValue(math.OneInt(), gm)}
	require.ErrorIs(t, dupBurn.Validate(), ErrInvalidGenesis)

	badParams := *gs
	badParams.Params.MaxHops = 0
	require.ErrorIs(t, badParams.Validate(), ErrInvalidParams)
}

func TestIsFatal(t *testing.T) {
	require.True(t, IsFatal(ErrValueCircuitBreaker.Wrap("asset")))
	require.True(t, IsFatal(ErrInvariantViolation))
	require.False(t, IsFatal(ErrInsufficientLiquidity))
	require.False(t, IsFatal(ErrExecutionOverflow.Wrap("position")))
}
