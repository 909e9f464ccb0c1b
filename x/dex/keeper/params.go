package keeper

import (
	"context"

	"github.com/paw-chain/sdex/x/dex/types"
)

// GetParams returns the current DEX parameters, or the defaults when unset.
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	var params types.Params
	found, err := getJSON(k.getStore(ctx), ParamsKey, &params)
	if err != nil {
		return types.Params{}, err
	}
	if !found {
		return types.DefaultParams(), nil
	}
	return params, nil
}

// SetParams validates and stores the DEX parameters.
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return setJSON(k.getStore(ctx), ParamsKey, params)
}
