package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// Reserves are a position's holdings of its pair's Asset1 (R1) and Asset2 (R2).
type Reserves struct {
	R1 math.Int `json:"r1"`
	R2 math.Int `json:"r2"`
}

// NewReserves returns reserves (r1, r2).
func NewReserves(r1, r2 math.Int) Reserves {
	return Reserves{R1: r1, R2: r2}
}

// ZeroReserves returns empty reserves.
func ZeroReserves() Reserves {
	return Reserves{R1: math.ZeroInt(), R2: math.ZeroInt()}
}

// Flip swaps the two sides.
func (r Reserves) Flip() Reserves {
	return Reserves{R1: r.R2, R2: r.R1}
}

// IsZero reports whether both sides are empty.
func (r Reserves) IsZero() bool {
	return r.R1.IsZero() && r.R2.IsZero()
}

// Equal compares both sides.
func (r Reserves) Equal(other Reserves) bool {
	return r.R1.Equal(other.R1) && r.R2.Equal(other.R2)
}

// Validate checks that both sides are set, nonnegative and within MaxReserveAmount.
func (r Reserves) Validate() error {
	if r.R1.IsNil() || r.R2.IsNil() {
		return ErrInvalidPosition.Wrap("reserves must be set")
	}
	if r.R1.IsNegative() || r.R2.IsNegative() {
		return ErrInvalidPosition.Wrapf("negative reserves (%s, %s)", r.R1, r.R2)
	}
	if r.R1.GT(MaxReserveAmount) || r.R2.GT(MaxReserveAmount) {
		return ErrInvalidPosition.Wrapf("reserves (%s, %s) exceed %s", r.R1, r.R2, MaxReserveAmount)
	}
	return nil
}

func (r Reserves) String() string {
	return fmt.Sprintf("(%s, %s)", r.R1, r.R2)
}
