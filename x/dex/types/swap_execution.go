package types

import (
	"cosmossdk.io/math"
)

// Fill records one position's part in a trace.
type Fill struct {
	PositionID PositionID `json:"position_id"`
	Input      Value      `json:"input"`
	Output     Value      `json:"output"`
}

// SwapExecution is the audit record of one directed leg of a batch swap.
// Each trace is the chain of amounts along one route execution, from the
// input asset to the output asset. It is never mutated once persisted.
type SwapExecution struct {
	Traces [][]Value `json:"traces"`
	Fills  []Fill    `json:"fills"`
	Input  Value     `json:"input"`
	Output Value     `json:"output"`
}

// IsEmpty reports whether nothing was executed.
func (s SwapExecution) IsEmpty() bool {
	return len(s.Traces) == 0
}

// MaxPrice is the worst input/output price over all traces. It reports
// false if there are no traces or a trace produced no output.
func (s SwapExecution) MaxPrice() (Price, bool) {
	var (
		worst Price
		found bool
	)
	for _, trace := range s.Traces {
		if len(trace) < 2 {
			continue
		}
		price, ok := PriceFromAmounts(trace[0].Amount, trace[len(trace)-1].Amount)
		if !ok {
			return Price{}, false
		}
		if !found || worst.LT(price) {
			worst, found = price, true
		}
	}
	return worst, found
}

// Append merges another execution along the same direction into s.
func (s *SwapExecution) Append(other SwapExecution) {
	s.Traces = append(s.Traces, other.Traces...)
	s.Fills = append(s.Fills, other.Fills...)
	if s.Input.Amount.IsNil() {
		s.Input = NewValue(math.ZeroInt(), other.Input.AssetID)
		s.Output = NewValue(math.ZeroInt(), other.Output.AssetID)
	}
	s.Input.Amount = s.Input.Amount.Add(other.Input.Amount)
	s.Output.Amount = s.Output.Amount.Add(other.Output.Amount)
}

// RecordedExecution is a persisted execution with the height it ran at.
// Pair is the swap direction; it is zero for arbitrage executions.
type RecordedExecution struct {
	Height    uint64              `json:"height"`
	Pair      DirectedTradingPair `json:"pair"`
	Execution SwapExecution       `json:"execution"`
}

// SimulatedTrade is the result of routing a trade without committing it.
type SimulatedTrade struct {
	Execution SwapExecution `json:"execution"`
	Unfilled  Value         `json:"unfilled"`
}
