package types

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

// priceKeyLen is the width of the fixed-point encoding used in index keys.
// Effective prices have numerator and denominator below 2^94, so they are
// below 2^94 and two distinct ones differ by more than 2^-188: 94 integer
// and 192 fractional bits keep every pair of them apart.
const priceKeyLen = 36

// priceKeyScale is the fractional precision (2^192) of index keys.
var priceKeyScale = new(big.Int).Lsh(big.NewInt(1), 192)

var priceKeyMax = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 8*priceKeyLen), big.NewInt(1))

// Price is an exact exchange rate: units of input paid per unit of output.
// Lower is better for the trader. The zero value is not a valid Price.
type Price struct {
	num *big.Int
	den *big.Int
}

// NewPrice returns num/den. The denominator must be positive and the
// numerator nonnegative.
func NewPrice(num, den math.Int) (Price, error) {
	if !den.IsPositive() {
		return Price{}, fmt.Errorf("price denominator must be positive, got %s", den)
	}
	if num.IsNegative() {
		return Price{}, fmt.Errorf("price numerator must be nonnegative, got %s", num)
	}
	return newPrice(num.BigInt(), den.BigInt()), nil
}

// PriceFromAmounts is the execution price input/output. It reports false
// when output is zero, i.e. the price is infinite.
func PriceFromAmounts(input, output math.Int) (Price, bool) {
	if !output.IsPositive() {
		return Price{}, false
	}
	p, err := NewPrice(input, output)
	return p, err == nil
}

// OnePrice is the unit exchange rate.
func OnePrice() Price {
	return newPrice(big.NewInt(1), big.NewInt(1))
}

func newPrice(num, den *big.Int) Price {
	return Price{num: new(big.Int).Set(num), den: new(big.Int).Set(den)}
}

// Mul composes two rates, e.g. along consecutive route hops.
func (p Price) Mul(other Price) Price {
	return Price{
		num: new(big.Int).Mul(p.num, other.num),
		den: new(big.Int).Mul(p.den, other.den),
	}
}

// Cmp compares two prices exactly.
func (p Price) Cmp(other Price) int {
	lhs := new(big.Int).Mul(p.num, other.den)
	rhs := new(big.Int).Mul(other.num, p.den)
	return lhs.Cmp(rhs)
}

// LT reports p < other.
func (p Price) LT(other Price) bool { return p.Cmp(other) < 0 }

// LTE reports p <= other.
func (p Price) LTE(other Price) bool { return p.Cmp(other) <= 0 }

// IsValid reports whether p was constructed.
func (p Price) IsValid() bool {
	return p.num != nil && p.den != nil && p.den.Sign() > 0
}

// IndexKey encodes floor(p * 2^192) as a 36-byte big-endian integer,
// saturating at the maximum. Byte order matches numeric order.
func (p Price) IndexKey() []byte {
	v := new(big.Int).Mul(p.num, priceKeyScale)
	v.Quo(v, p.den)
	if v.Cmp(priceKeyMax) > 0 {
		v.Set(priceKeyMax)
	}
	key := make([]byte, priceKeyLen)
	return v.FillBytes(key)
}

// Dec renders the price as a LegacyDec, truncated to 18 decimals.
func (p Price) Dec() math.LegacyDec {
	return math.LegacyNewDecFromBigInt(p.num).Quo(math.LegacyNewDecFromBigInt(p.den))
}

func (p Price) String() string {
	if !p.IsValid() {
		return "invalid"
	}
	return fmt.Sprintf("%s/%s", p.num, p.den)
}
