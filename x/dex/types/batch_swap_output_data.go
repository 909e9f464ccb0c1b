package types

import (
	"cosmossdk.io/math"
)

// BatchSwapOutputData is the settlement result of one trading pair at one height.
//
// Delta1 of Asset1 was offered; Unfilled1 of it is returned unchanged and the
// rest was exchanged into Lambda2 of Asset2. Symmetrically Delta2 of Asset2
// splits into Unfilled2 and the part exchanged into Lambda1 of Asset1.
type BatchSwapOutputData struct {
	Delta1              math.Int    `json:"delta_1"`
	Delta2              math.Int    `json:"delta_2"`
	Lambda1             math.Int    `json:"lambda_1"`
	Lambda2             math.Int    `json:"lambda_2"`
	Unfilled1           math.Int    `json:"unfilled_1"`
	Unfilled2           math.Int    `json:"unfilled_2"`
	Height              uint64      `json:"height"`
	TradingPair         TradingPair `json:"trading_pair"`
	EpochStartingHeight uint64      `json:"epoch_starting_height"`
}

// Filled1 is the part of Delta1 that was exchanged.
func (o BatchSwapOutputData) Filled1() math.Int {
	return o.Delta1.Sub(o.Unfilled1)
}

// Filled2 is the part of Delta2 that was exchanged.
func (o BatchSwapOutputData) Filled2() math.Int {
	return o.Delta2.Sub(o.Unfilled2)
}

// Validate checks the conservation of both input directions.
func (o BatchSwapOutputData) Validate() error {
	for _, a := range []math.Int{o.Delta1, o.Delta2, o.Lambda1, o.Lambda2, o.Unfilled1, o.Unfilled2} {
		if a.IsNil() || a.IsNegative() {
			return ErrInvariantViolation.Wrapf("batch output for %s has an unset or negative amount", o.TradingPair)
		}
	}
	if o.Unfilled1.GT(o.Delta1) || o.Unfilled2.GT(o.Delta2) {
		return ErrInvariantViolation.Wrapf("batch output for %s returns more than its input", o.TradingPair)
	}
	if (o.Filled1().IsZero() && !o.Lambda2.IsZero()) || (o.Filled2().IsZero() && !o.Lambda1.IsZero()) {
		return ErrInvariantViolation.Wrapf("batch output for %s produces output without input", o.TradingPair)
	}
	return nil
}

// ProRataOutputs splits the batch result for one participant who
// contributed delta1i of Asset1 and delta2i of Asset2. It returns the
// participant's share of Asset1 (lambda1i) and Asset2 (lambda2i), rounded down.
func (o BatchSwapOutputData) ProRataOutputs(delta1i, delta2i math.Int) (lambda1i, lambda2i math.Int) {
	lambda1i, lambda2i = math.ZeroInt(), math.ZeroInt()
	if o.Delta1.IsPositive() {
		lambda2i = lambda2i.Add(delta1i.Mul(o.Lambda2).Quo(o.Delta1))
		lambda1i = lambda1i.Add(delta1i.Mul(o.Unfilled1).Quo(o.Delta1))
	}
	if o.Delta2.IsPositive() {
		lambda1i = lambda1i.Add(delta2i.Mul(o.Lambda1).Quo(o.Delta2))
		lambda2i = lambda2i.Add(delta2i.Mul(o.Unfilled2).Quo(o.Delta2))
	}
	return lambda1i, lambda2i
}
