package types

import "context"

// EpochSource reports the height at which the current epoch started.
type EpochSource interface {
	CurrentEpochStartHeight(ctx context.Context) uint64
}
