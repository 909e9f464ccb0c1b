package types

import (
	"fmt"
	"slices"
)

// DefaultNativeDenom is the staking token used as the arbitrage anchor.
const DefaultNativeDenom = "upaw"

const (
	DefaultMaxHops                    = 4
	DefaultMaxPositionsPerPair        = 1_000
	DefaultDynamicCandidateLimit      = 10
	DefaultMaxExecutionBudget         = 64
	DefaultRecentlyAccessedAssetLimit = 10

	// MaxHopsLimit bounds MaxHops; arbitrage searches two hops beyond it.
	MaxHopsLimit = 8

	// MaxArbitrageRounds bounds how often the end-of-block arbitrage is
	// rerun, each run with a fresh execution budget.
	MaxArbitrageRounds = 16
)

// Params are the governance-controlled DEX parameters.
type Params struct {
	IsEnabled bool `json:"is_enabled"`
	// NativeAsset anchors arbitrage cycles.
	NativeAsset AssetID `json:"native_asset"`
	// FixedCandidates are always considered as intermediate routing assets.
	FixedCandidates []AssetID `json:"fixed_candidates"`
	MaxHops         uint32    `json:"max_hops"`
	// MaxPositionsPerPair caps each directed eviction queue.
	MaxPositionsPerPair uint32 `json:"max_positions_per_pair"`
	// DynamicCandidateLimit is how many liquidity-ranked assets join the candidate set.
	DynamicCandidateLimit uint32 `json:"dynamic_candidate_limit"`
	// MaxExecutionBudget bounds route-and-fill iterations per swap direction.
	MaxExecutionBudget         uint32 `json:"max_execution_budget"`
	RecentlyAccessedAssetLimit uint32 `json:"recently_accessed_asset_limit"`
	ArbitrageEnabled           bool   `json:"arbitrage_enabled"`
}

// DefaultParams returns the default DEX parameters.
func DefaultParams() Params {
	native := AssetIDFromDenom(DefaultNativeDenom)
	return Params{
		IsEnabled:                  true,
		NativeAsset:                native,
		FixedCandidates:            []AssetID{native},
		MaxHops:                    DefaultMaxHops,
		MaxPositionsPerPair:        DefaultMaxPositionsPerPair,
		DynamicCandidateLimit:      DefaultDynamicCandidateLimit,
		MaxExecutionBudget:         DefaultMaxExecutionBudget,
		RecentlyAccessedAssetLimit: DefaultRecentlyAccessedAssetLimit,
		ArbitrageEnabled:           true,
	}
}

// Validate performs basic validation of DEX parameters.
func (p Params) Validate() error {
	if p.NativeAsset.IsZero() {
		return ErrInvalidParams.Wrap("native asset must be set")
	}
	if p.MaxHops == 0 || p.MaxHops > MaxHopsLimit {
		return ErrInvalidParams.Wrapf("max hops must be in [1, %d], got %d", MaxHopsLimit, p.MaxHops)
	}
	if p.MaxPositionsPerPair == 0 {
		return ErrInvalidParams.Wrap("max positions per pair must be positive")
	}
	if p.MaxExecutionBudget == 0 {
		return ErrInvalidParams.Wrap("max execution budget must be positive")
	}
	seen := make(map[AssetID]struct{}, len(p.FixedCandidates))
	for _, id := range p.FixedCandidates {
		if id.IsZero() {
			return ErrInvalidParams.Wrap("fixed candidate must be set")
		}
		if _, dup := seen[id]; dup {
			return ErrInvalidParams.Wrapf("duplicate fixed candidate %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// RoutingParams derives the routing parameters used for batch swaps.
func (p Params) RoutingParams() RoutingParams {
	return RoutingParams{
		MaxHops:               p.MaxHops,
		FixedCandidates:       append([]AssetID(nil), p.FixedCandidates...),
		DynamicCandidateLimit: p.DynamicCandidateLimit,
	}
}

// RoutingParams bound a single path search and fill.
type RoutingParams struct {
	// PriceLimit, when set, is a strict upper bound on execution prices.
	PriceLimit            *Price
	FixedCandidates       []AssetID
	MaxHops               uint32
	DynamicCandidateLimit uint32
}

// WithExtraCandidates returns a copy with ids appended to the fixed
// candidates, skipping ids already present.
func (r RoutingParams) WithExtraCandidates(ids ...AssetID) RoutingParams {
	out := r
	out.FixedCandidates = append([]AssetID(nil), r.FixedCandidates...)
	for _, id := range ids {
		if !slices.Contains(out.FixedCandidates, id) {
			out.FixedCandidates = append(out.FixedCandidates, id)
		}
	}
	return out
}

// WithPriceLimit returns a copy bounded by limit.
func (r RoutingParams) WithPriceLimit(limit Price) RoutingParams {
	out := r
	out.PriceLimit = &limit
	return out
}

func (r RoutingParams) String() string {
	return fmt.Sprintf("hops=%d fixed=%d dynamic=%d limit=%v", r.MaxHops, len(r.FixedCandidates), r.DynamicCandidateLimit, r.PriceLimit)
}
