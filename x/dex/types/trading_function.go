package types

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

const (
	// FeeDenominator is the basis-point denominator of position fees.
	FeeDenominator = 10_000

	// MaxFeeBps is the largest admissible position fee.
	MaxFeeBps = 10_000
)

// MaxReserveAmount bounds reserves and trading function coefficients (2^80 - 1).
var MaxReserveAmount = math.NewIntFromBigInt(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 80), big.NewInt(1)),
)

// BareTradingFunction is the linear trading function p*R1 + q*R2 = k with a
// fee, independent of the assets it trades.
type BareTradingFunction struct {
	Fee uint32   `json:"fee"`
	P   math.Int `json:"p"`
	Q   math.Int `json:"q"`
}

// NewBareTradingFunction returns the function with the given fee (bps) and coefficients.
func NewBareTradingFunction(fee uint32, p, q math.Int) BareTradingFunction {
	return BareTradingFunction{Fee: fee, P: p, Q: q}
}

// Validate checks the coefficient and fee bounds.
func (b BareTradingFunction) Validate() error {
	if b.P.IsNil() || b.Q.IsNil() {
		return ErrInvalidPosition.Wrap("trading function coefficients must be set")
	}
	if !b.P.IsPositive() || !b.Q.IsPositive() {
		return ErrInvalidPosition.Wrapf("coefficients must be positive: p=%s q=%s", b.P, b.Q)
	}
	if b.P.GT(MaxReserveAmount) || b.Q.GT(MaxReserveAmount) {
		return ErrInvalidPosition.Wrapf("coefficients exceed %s: p=%s q=%s", MaxReserveAmount, b.P, b.Q)
	}
	if b.Fee > MaxFeeBps {
		return ErrInvalidPosition.Wrapf("fee %d exceeds %d bps", b.Fee, MaxFeeBps)
	}
	return nil
}

// Flip swaps the roles of the two assets.
func (b BareTradingFunction) Flip() BareTradingFunction {
	return BareTradingFunction{Fee: b.Fee, P: b.Q, Q: b.P}
}

// gamma is the fee-adjusted numerator over FeeDenominator.
func (b BareTradingFunction) gamma() math.Int {
	return math.NewInt(int64(FeeDenominator - b.Fee))
}

// IsRoutable reports whether the fee leaves any output to a trader.
func (b BareTradingFunction) IsRoutable() bool {
	return b.Fee < MaxFeeBps
}

// EffectivePrice is the amount of asset 1 a trader pays per unit of asset 2,
// fees included: q / (p * gamma). It reports false for a 100% fee.
func (b BareTradingFunction) EffectivePrice() (Price, bool) {
	if !b.IsRoutable() {
		return Price{}, false
	}
	num := b.Q.MulRaw(FeeDenominator)
	den := b.P.Mul(b.gamma())
	p, err := NewPrice(num, den)
	return p, err == nil
}

// convert returns the exact output numerator and denominator for an input of asset 1.
func (b BareTradingFunction) outputRatio() (num, den math.Int) {
	return b.P.Mul(b.gamma()), b.Q.MulRaw(FeeDenominator)
}

// Fill trades delta1 units of asset 1 against reserves (r1, r2). Output is
// rounded down and any input the reserves cannot absorb is returned unfilled.
func (b BareTradingFunction) Fill(delta1 math.Int, r Reserves) (unfilled math.Int, next Reserves, lambda2 math.Int, err error) {
	if delta1.IsNegative() {
		return math.Int{}, Reserves{}, math.Int{}, ErrInvalidAmount.Wrapf("negative input %s", delta1)
	}
	if !b.IsRoutable() || delta1.IsZero() {
		return delta1, r, math.ZeroInt(), nil
	}
	num, den := b.outputRatio()

	// delta1 * p * gamma <= r2 * q * FeeDenominator means the position can pay in full.
	if delta1.Mul(num).LTE(r.R2.Mul(den)) {
		lambda2 = delta1.Mul(num).Quo(den)
		next = Reserves{R1: r.R1.Add(delta1), R2: r.R2.Sub(lambda2)}
		if next.R1.GT(MaxReserveAmount) {
			return math.Int{}, Reserves{}, math.Int{}, ErrExecutionOverflow
		}
		return math.ZeroInt(), next, lambda2, nil
	}

	consumed := ceilQuo(r.R2.Mul(den), num)
	if consumed.GT(delta1) {
		return math.Int{}, Reserves{}, math.Int{}, ErrInvariantViolation.Wrapf(
			"exhausting fill consumes %s of %s", consumed, delta1)
	}
	next = Reserves{R1: r.R1.Add(consumed), R2: math.ZeroInt()}
	if next.R1.GT(MaxReserveAmount) {
		return math.Int{}, Reserves{}, math.Int{}, ErrExecutionOverflow
	}
	return delta1.Sub(consumed), next, r.R2, nil
}

// FillOutput computes the asset 1 input needed to take exactly lambda2 units
// of asset 2. It reports false if lambda2 exceeds the reserves.
func (b BareTradingFunction) FillOutput(lambda2 math.Int, r Reserves) (next Reserves, delta1 math.Int, ok bool, err error) {
	if lambda2.GT(r.R2) {
		return Reserves{}, math.Int{}, false, nil
	}
	if lambda2.IsZero() {
		return r, math.ZeroInt(), true, nil
	}
	if !b.IsRoutable() {
		return Reserves{}, math.Int{}, false, nil
	}
	num, den := b.outputRatio()
	delta1 = ceilQuo(lambda2.Mul(den), num)
	next = Reserves{R1: r.R1.Add(delta1), R2: r.R2.Sub(lambda2)}
	if next.R1.GT(MaxReserveAmount) {
		return Reserves{}, math.Int{}, false, ErrExecutionOverflow
	}
	return next, delta1, true, nil
}

// Invariant is p*r1 + q*r2 for the given reserves.
func (b BareTradingFunction) Invariant(r Reserves) math.Int {
	return b.P.Mul(r.R1).Add(b.Q.Mul(r.R2))
}

func (b BareTradingFunction) String() string {
	return fmt.Sprintf("%s*r1 + %s*r2 (fee %dbps)", b.P, b.Q, b.Fee)
}

// ceilQuo is ceil(a / b) for nonnegative a and positive b.
func ceilQuo(a, b math.Int) math.Int {
	q := a.Quo(b)
	if !q.Mul(b).Equal(a) {
		q = q.AddRaw(1)
	}
	return q
}

// TradingFunction binds a bare trading function to its canonical pair.
// P is the coefficient of Pair.Asset1 and Q of Pair.Asset2.
type TradingFunction struct {
	Component BareTradingFunction `json:"component"`
	Pair      TradingPair         `json:"pair"`
}

// MatchesInput reports whether asset can be sold to this function.
func (t TradingFunction) MatchesInput(asset AssetID) bool {
	return t.Pair.Contains(asset)
}

// Orient returns the bare function viewed from start, so that start plays
// the role of asset 1.
func (t TradingFunction) Orient(start AssetID) (BareTradingFunction, error) {
	switch start {
	case t.Pair.Asset1:
		return t.Component, nil
	case t.Pair.Asset2:
		return t.Component.Flip(), nil
	default:
		return BareTradingFunction{}, ErrAssetMismatch.Wrapf("%s not in %s", start, t.Pair)
	}
}

// Fill trades input against reserves in whichever direction input selects.
func (t TradingFunction) Fill(input Value, r Reserves) (unfilled Value, next Reserves, output Value, err error) {
	bare, err := t.Orient(input.AssetID)
	if err != nil {
		return Value{}, Reserves{}, Value{}, err
	}
	flipped := input.AssetID == t.Pair.Asset2
	if flipped {
		r = r.Flip()
	}
	left, next, out, err := bare.Fill(input.Amount, r)
	if err != nil {
		return Value{}, Reserves{}, Value{}, err
	}
	outAsset := t.Pair.Asset2
	if flipped {
		next = next.Flip()
		outAsset = t.Pair.Asset1
	}
	return NewValue(left, input.AssetID), next, NewValue(out, outAsset), nil
}

// FillOutput computes the input needed to take exactly output from reserves.
func (t TradingFunction) FillOutput(r Reserves, output Value) (next Reserves, input Value, ok bool, err error) {
	var inAsset AssetID
	switch output.AssetID {
	case t.Pair.Asset2:
		inAsset = t.Pair.Asset1
	case t.Pair.Asset1:
		inAsset = t.Pair.Asset2
	default:
		return Reserves{}, Value{}, false, ErrAssetMismatch.Wrapf("%s not in %s", output.AssetID, t.Pair)
	}
	bare, err := t.Orient(inAsset)
	if err != nil {
		return Reserves{}, Value{}, false, err
	}
	flipped := inAsset == t.Pair.Asset2
	if flipped {
		r = r.Flip()
	}
	next, in, ok, err := bare.FillOutput(output.Amount, r)
	if err != nil || !ok {
		return Reserves{}, Value{}, ok, err
	}
	if flipped {
		next = next.Flip()
	}
	return next, NewValue(in, inAsset), true, nil
}

// EffectivePriceFor is the price of buying the other asset with start.
func (t TradingFunction) EffectivePriceFor(start AssetID) (Price, bool) {
	bare, err := t.Orient(start)
	if err != nil {
		return Price{}, false
	}
	return bare.EffectivePrice()
}
