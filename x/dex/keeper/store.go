package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
)

// getJSON loads the JSON value under key into out, reporting whether it exists.
func getJSON(store storetypes.KVStore, key []byte, out any) (bool, error) {
	bz := store.Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, out); err != nil {
		return false, fmt.Errorf("getJSON: unmarshal %x: %w", key, err)
	}
	return true, nil
}

// setJSON stores the JSON encoding of v under key.
func setJSON(store storetypes.KVStore, key []byte, v any) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("setJSON: marshal %x: %w", key, err)
	}
	store.Set(key, bz)
	return nil
}

// getAmount loads an amount, defaulting to zero.
func getAmount(store storetypes.KVStore, key []byte) (math.Int, error) {
	bz := store.Get(key)
	if bz == nil {
		return math.ZeroInt(), nil
	}
	var amount math.Int
	if err := amount.Unmarshal(bz); err != nil {
		return math.Int{}, fmt.Errorf("getAmount: unmarshal %x: %w", key, err)
	}
	return amount, nil
}

// setAmount stores an amount, deleting the key when it is zero.
func setAmount(store storetypes.KVStore, key []byte, amount math.Int) error {
	if amount.IsZero() {
		store.Delete(key)
		return nil
	}
	bz, err := amount.Marshal()
	if err != nil {
		return fmt.Errorf("setAmount: marshal %x: %w", key, err)
	}
	store.Set(key, bz)
	return nil
}
