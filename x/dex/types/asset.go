package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"

	"cosmossdk.io/math"
	"golang.org/x/crypto/blake2b"
)

// AssetIDLen is the byte length of an asset identifier.
const AssetIDLen = 32

const assetIDDomain = "sdex/asset-id/v1"

// AssetID is an opaque, domain-separated asset identifier.
type AssetID [AssetIDLen]byte

// AssetIDFromDenom derives the identifier of a base denomination.
func AssetIDFromDenom(denom string) AssetID {
	return AssetID(blake2b.Sum256(append([]byte(assetIDDomain), denom...)))
}

// AssetIDFromBytes parses a raw 32-byte asset identifier.
func AssetIDFromBytes(bz []byte) (AssetID, error) {
	var id AssetID
	if len(bz) != AssetIDLen {
		return id, fmt.Errorf("asset id must be %d bytes, got %d", AssetIDLen, len(bz))
	}
	copy(id[:], bz)
	return id, nil
}

// AssetIDFromHex parses the hex encoding produced by String.
func AssetIDFromHex(s string) (AssetID, error) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return AssetID{}, fmt.Errorf("invalid asset id %q: %w", s, err)
	}
	return AssetIDFromBytes(bz)
}

// Bytes returns a copy of the identifier bytes.
func (a AssetID) Bytes() []byte {
	bz := make([]byte, AssetIDLen)
	copy(bz, a[:])
	return bz
}

// Compare orders asset ids bytewise.
func (a AssetID) Compare(other AssetID) int {
	return bytes.Compare(a[:], other[:])
}

// IsZero reports whether the identifier is unset.
func (a AssetID) IsZero() bool {
	return a == AssetID{}
}

func (a AssetID) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalJSON encodes the identifier as a hex string.
func (a AssetID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a hex string identifier.
func (a *AssetID) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	id, err := AssetIDFromHex(s)
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// SortAssetIDs sorts ids in place in ascending byte order.
func SortAssetIDs(ids []AssetID) {
	slices.SortFunc(ids, func(a, b AssetID) int { return a.Compare(b) })
}

// Value is an amount of a specific asset.
type Value struct {
	Amount  math.Int `json:"amount"`
	AssetID AssetID  `json:"asset_id"`
}

// NewValue returns a Value of amount units of asset.
func NewValue(amount math.Int, asset AssetID) Value {
	return Value{Amount: amount, AssetID: asset}
}

func (v Value) String() string {
	return fmt.Sprintf("%s%s", v.Amount, v.AssetID)
}
