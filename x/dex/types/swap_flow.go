package types

import (
	"cosmossdk.io/math"
)

// SwapFlow is the net swap demand for a trading pair in one block: Delta1
// units of Asset1 to sell for Asset2 and Delta2 units of Asset2 to sell for Asset1.
type SwapFlow struct {
	Delta1 math.Int `json:"delta_1"`
	Delta2 math.Int `json:"delta_2"`
}

// NewSwapFlow returns the flow (delta1, delta2).
func NewSwapFlow(delta1, delta2 math.Int) SwapFlow {
	return SwapFlow{Delta1: delta1, Delta2: delta2}
}

// ZeroSwapFlow is the empty flow.
func ZeroSwapFlow() SwapFlow {
	return SwapFlow{Delta1: math.ZeroInt(), Delta2: math.ZeroInt()}
}

// Add accumulates another flow.
func (f SwapFlow) Add(other SwapFlow) SwapFlow {
	return SwapFlow{Delta1: f.Delta1.Add(other.Delta1), Delta2: f.Delta2.Add(other.Delta2)}
}

// IsZero reports whether there is no demand in either direction.
func (f SwapFlow) IsZero() bool {
	return f.Delta1.IsZero() && f.Delta2.IsZero()
}

// Validate rejects unset or negative deltas.
func (f SwapFlow) Validate() error {
	if f.Delta1.IsNil() || f.Delta2.IsNil() {
		return ErrInvalidSwapFlow.Wrap("deltas must be set")
	}
	if f.Delta1.IsNegative() || f.Delta2.IsNegative() {
		return ErrInvalidSwapFlow.Wrapf("negative deltas (%s, %s)", f.Delta1, f.Delta2)
	}
	return nil
}
