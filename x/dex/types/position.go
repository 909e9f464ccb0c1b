package types

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"cosmossdk.io/math"
	"golang.org/x/crypto/blake2b"
)

const positionIDDomain = "sdex/position-id/v1"

// PositionID identifies a position. It commits to the trading function and nonce.
type PositionID [32]byte

// PositionIDFromBytes parses a raw 32-byte position id.
func PositionIDFromBytes(bz []byte) (PositionID, error) {
	var id PositionID
	if len(bz) != len(id) {
		return id, fmt.Errorf("position id must be %d bytes, got %d", len(id), len(bz))
	}
	copy(id[:], bz)
	return id, nil
}

// Compare orders position ids bytewise.
func (id PositionID) Compare(other PositionID) int {
	return bytes.Compare(id[:], other[:])
}

func (id PositionID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalJSON encodes the id as hex.
func (id PositionID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes a hex id.
func (id *PositionID) UnmarshalJSON(bz []byte) error {
	return unmarshalHex32(bz, (*[32]byte)(id))
}

// PositionNonce makes otherwise identical positions distinct.
type PositionNonce [32]byte

// MarshalJSON encodes the nonce as hex.
func (n PositionNonce) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(n[:]))
}

// UnmarshalJSON decodes a hex nonce.
func (n *PositionNonce) UnmarshalJSON(bz []byte) error {
	return unmarshalHex32(bz, (*[32]byte)(n))
}

func unmarshalHex32(bz []byte, out *[32]byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != 32 {
		return fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return nil
}

// Position is a liquidity provider's standing order: a linear trading
// function with its current reserves.
type Position struct {
	State    PositionState   `json:"state"`
	Reserves Reserves        `json:"reserves"`
	Phi      TradingFunction `json:"phi"`
	Nonce    PositionNonce   `json:"nonce"`
	// CloseOnFill closes the position as soon as a fill empties either side.
	CloseOnFill bool `json:"close_on_fill"`
}

// NewPosition builds an opened position quoting pair. p is the coefficient of
// pair.Start, q of pair.End, and reserves are given as (start, end).
func NewPosition(nonce PositionNonce, pair DirectedTradingPair, fee uint32, p, q math.Int, reserves Reserves) (Position, error) {
	canonical, err := pair.ToCanonical()
	if err != nil {
		return Position{}, err
	}
	component := NewBareTradingFunction(fee, p, q)
	if !pair.IsCanonical() {
		component = component.Flip()
		reserves = reserves.Flip()
	}
	return Position{
		State:    OpenedState(),
		Reserves: reserves,
		Phi:      TradingFunction{Component: component, Pair: canonical},
		Nonce:    nonce,
	}, nil
}

// NewPositionWithRand is NewPosition with a nonce drawn from rng, or from
// crypto/rand when rng is nil.
func NewPositionWithRand(rng io.Reader, pair DirectedTradingPair, fee uint32, p, q math.Int, reserves Reserves) (Position, error) {
	if rng == nil {
		rng = rand.Reader
	}
	var nonce PositionNonce
	if _, err := io.ReadFull(rng, nonce[:]); err != nil {
		return Position{}, fmt.Errorf("failed to draw position nonce: %w", err)
	}
	return NewPosition(nonce, pair, fee, p, q, reserves)
}

// ID derives the position id from the nonce and trading function.
func (p Position) ID() PositionID {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(positionIDDomain))
	h.Write(p.Nonce[:])
	h.Write(p.Phi.Pair.Bytes())
	var fee [4]byte
	binary.BigEndian.PutUint32(fee[:], p.Phi.Component.Fee)
	h.Write(fee[:])
	h.Write(AmountKey(p.Phi.Component.P))
	h.Write(AmountKey(p.Phi.Component.Q))
	var id PositionID
	copy(id[:], h.Sum(nil))
	return id
}

// Validate checks the stateless position invariants.
func (p Position) Validate() error {
	if err := p.Phi.Pair.Validate(); err != nil {
		return ErrInvalidPosition.Wrap(err.Error())
	}
	if err := p.Phi.Component.Validate(); err != nil {
		return err
	}
	if err := p.Reserves.Validate(); err != nil {
		return err
	}
	return p.State.Validate()
}

// ValidateOpen additionally requires a freshly opened position to hold inventory.
func (p Position) ValidateOpen() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !p.State.IsOpened() {
		return ErrInvalidPosition.Wrapf("new position must be opened, got %s", p.State)
	}
	if p.Reserves.IsZero() {
		return ErrInvalidPosition.Wrap("position provisions no inventory")
	}
	return nil
}

// ReservesFor returns the reserve held of asset.
func (p Position) ReservesFor(asset AssetID) (math.Int, bool) {
	switch asset {
	case p.Phi.Pair.Asset1:
		return p.Reserves.R1, true
	case p.Phi.Pair.Asset2:
		return p.Reserves.R2, true
	default:
		return math.Int{}, false
	}
}

// AmountKey encodes a nonnegative amount as a fixed-width, order-preserving
// 16-byte key, saturating at 2^128-1.
func AmountKey(a math.Int) []byte {
	bz := make([]byte, 16)
	if a.IsNil() || a.IsNegative() {
		return bz
	}
	b := a.BigInt()
	if b.BitLen() > 128 {
		for i := range bz {
			bz[i] = 0xff
		}
		return bz
	}
	return b.FillBytes(bz)
}
