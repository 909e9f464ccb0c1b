package types

import (
	"fmt"
)

// TradingPair is an unordered pair of assets stored in canonical order,
// Asset1 < Asset2 bytewise.
type TradingPair struct {
	Asset1 AssetID `json:"asset_1"`
	Asset2 AssetID `json:"asset_2"`
}

// NewTradingPair returns the canonical pair of two distinct assets.
func NewTradingPair(a, b AssetID) (TradingPair, error) {
	switch a.Compare(b) {
	case 0:
		return TradingPair{}, ErrInvalidTradingPair.Wrapf("assets must differ: %s", a)
	case 1:
		a, b = b, a
	}
	return TradingPair{Asset1: a, Asset2: b}, nil
}

// MustNewTradingPair is NewTradingPair for pairs known to be valid.
func MustNewTradingPair(a, b AssetID) TradingPair {
	pair, err := NewTradingPair(a, b)
	if err != nil {
		panic(err)
	}
	return pair
}

// Validate checks the canonical ordering invariant.
func (p TradingPair) Validate() error {
	if p.Asset1.Compare(p.Asset2) >= 0 {
		return ErrInvalidTradingPair.Wrapf("pair %s is not in canonical order", p)
	}
	return nil
}

// Contains reports whether asset is one of the pair's assets.
func (p TradingPair) Contains(asset AssetID) bool {
	return p.Asset1 == asset || p.Asset2 == asset
}

// Compare orders pairs by Asset1 then Asset2.
func (p TradingPair) Compare(other TradingPair) int {
	if c := p.Asset1.Compare(other.Asset1); c != 0 {
		return c
	}
	return p.Asset2.Compare(other.Asset2)
}

// Bytes returns the 64-byte encoding Asset1 || Asset2.
func (p TradingPair) Bytes() []byte {
	bz := make([]byte, 0, 2*AssetIDLen)
	bz = append(bz, p.Asset1[:]...)
	return append(bz, p.Asset2[:]...)
}

// Forward is the directed pair Asset1 -> Asset2.
func (p TradingPair) Forward() DirectedTradingPair {
	return DirectedTradingPair{Start: p.Asset1, End: p.Asset2}
}

// Backward is the directed pair Asset2 -> Asset1.
func (p TradingPair) Backward() DirectedTradingPair {
	return DirectedTradingPair{Start: p.Asset2, End: p.Asset1}
}

func (p TradingPair) String() string {
	return fmt.Sprintf("%s:%s", p.Asset1, p.Asset2)
}

// DirectedTradingPair is an ordered pair: trades sell Start and buy End.
type DirectedTradingPair struct {
	Start AssetID `json:"start"`
	End   AssetID `json:"end"`
}

// NewDirectedTradingPair returns the directed pair start -> end.
func NewDirectedTradingPair(start, end AssetID) DirectedTradingPair {
	return DirectedTradingPair{Start: start, End: end}
}

// Flip reverses the direction.
func (d DirectedTradingPair) Flip() DirectedTradingPair {
	return DirectedTradingPair{Start: d.End, End: d.Start}
}

// IsCanonical reports whether Start sorts before End.
func (d DirectedTradingPair) IsCanonical() bool {
	return d.Start.Compare(d.End) < 0
}

// ToCanonical returns the unordered pair. Start and End must differ.
func (d DirectedTradingPair) ToCanonical() (TradingPair, error) {
	return NewTradingPair(d.Start, d.End)
}

// Compare orders directed pairs by Start then End.
func (d DirectedTradingPair) Compare(other DirectedTradingPair) int {
	if c := d.Start.Compare(other.Start); c != 0 {
		return c
	}
	return d.End.Compare(other.End)
}

// Bytes returns the 64-byte encoding Start || End.
func (d DirectedTradingPair) Bytes() []byte {
	bz := make([]byte, 0, 2*AssetIDLen)
	bz = append(bz, d.Start[:]...)
	return append(bz, d.End[:]...)
}

func (d DirectedTradingPair) String() string {
	return fmt.Sprintf("%s->%s", d.Start, d.End)
}
