package types

import (
	"cosmossdk.io/errors"
)

// DEX module sentinel errors
var (
	ErrInvalidPosition       = errors.Register(ModuleName, 2, "invalid position")
	ErrDuplicatePosition     = errors.Register(ModuleName, 3, "position already exists")
	ErrPositionNotFound      = errors.Register(ModuleName, 4, "position not found")
	ErrPositionNotOpen       = errors.Register(ModuleName, 5, "position is not open")
	ErrPositionNotClosed     = errors.Register(ModuleName, 6, "position is not closed")
	ErrInvalidTradingPair    = errors.Register(ModuleName, 7, "invalid trading pair")
	ErrAssetMismatch         = errors.Register(ModuleName, 8, "asset does not belong to trading pair")
	ErrExecutionOverflow     = errors.Register(ModuleName, 9, "execution overflows position reserves")
	ErrInsufficientLiquidity = errors.Register(ModuleName, 10, "insufficient liquidity")
	ErrInvalidRoute          = errors.Register(ModuleName, 11, "invalid route")
	ErrInvariantViolation    = errors.Register(ModuleName, 12, "dex invariant violated")
	ErrValueCircuitBreaker   = errors.Register(ModuleName, 13, "value circuit breaker tripped")
	ErrInvalidParams         = errors.Register(ModuleName, 14, "invalid dex params")
	ErrInvalidGenesis        = errors.Register(ModuleName, 15, "invalid genesis state")
	ErrDexDisabled           = errors.Register(ModuleName, 16, "dex is disabled")
	ErrInvalidSwapFlow       = errors.Register(ModuleName, 17, "invalid swap flow")
	ErrOutputDataNotFound    = errors.Register(ModuleName, 18, "batch swap output data not found")
	ErrInvalidAmount         = errors.Register(ModuleName, 19, "invalid amount")
)

// IsFatal reports whether err signals a broken DEX invariant that must abort
// block processing rather than be recovered from.
func IsFatal(err error) bool {
	return errors.IsOf(err, ErrInvariantViolation, ErrValueCircuitBreaker)
}
