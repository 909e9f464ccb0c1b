package keeper

import (
	"context"
	"slices"
	"strings"

	"github.com/paw-chain/sdex/x/dex/types"
)

// Path is a route from Start through Nodes, priced as the product of the
// best effective price on each hop.
type Path struct {
	Start types.AssetID
	Nodes []types.AssetID
	Price types.Price
}

// End is the last asset of the path.
func (p Path) End() types.AssetID {
	if len(p.Nodes) == 0 {
		return p.Start
	}
	return p.Nodes[len(p.Nodes)-1]
}

// Hops returns the number of pairs the path crosses.
func (p Path) Hops() int {
	return len(p.Nodes)
}

func (p Path) visits(asset types.AssetID) bool {
	return p.Start == asset || slices.Contains(p.Nodes, asset)
}

func (p Path) extend(next types.AssetID, hopPrice types.Price) Path {
	nodes := make([]types.AssetID, 0, len(p.Nodes)+1)
	nodes = append(nodes, p.Nodes...)
	return Path{Start: p.Start, Nodes: append(nodes, next), Price: p.Price.Mul(hopPrice)}
}

func (p Path) String() string {
	parts := make([]string, 0, len(p.Nodes)+1)
	parts = append(parts, shortAsset(p.Start))
	for _, n := range p.Nodes {
		parts = append(parts, shortAsset(n))
	}
	return strings.Join(parts, "->") + " @ " + p.Price.String()
}

func shortAsset(id types.AssetID) string {
	return id.String()[:8]
}

// comparePaths orders paths by price, then hop count, then the assets
// visited, so the best path is always unique.
func comparePaths(a, b Path) int {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c
	}
	if c := len(a.Nodes) - len(b.Nodes); c != 0 {
		return c
	}
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	for i := range a.Nodes {
		if c := a.Nodes[i].Compare(b.Nodes[i]); c != 0 {
			return c
		}
	}
	return 0
}

// pathSearch holds the per-search memo of hop prices. Positions do not
// change while a search runs.
type pathSearch struct {
	k      Keeper
	ctx    context.Context
	params types.RoutingParams
	dst    types.AssetID
	prices map[types.DirectedTradingPair]*types.Price
}

func (s *pathSearch) hopPrice(pair types.DirectedTradingPair) (types.Price, bool, error) {
	if cached, ok := s.prices[pair]; ok {
		if cached == nil {
			return types.Price{}, false, nil
		}
		return *cached, true, nil
	}
	price, found, err := s.k.bestPrice(s.ctx, pair)
	if err != nil {
		return types.Price{}, false, err
	}
	if !found {
		s.prices[pair] = nil
		return types.Price{}, false, nil
	}
	s.prices[pair] = &price
	return price, true, nil
}

func (s *pathSearch) candidates(from types.AssetID) ([]types.AssetID, error) {
	fixed := s.params.FixedCandidates
	if !slices.Contains(fixed, s.dst) {
		fixed = append(slices.Clone(fixed), s.dst)
	}
	return s.k.CandidateSet(s.ctx, from, fixed, s.params.DynamicCandidateLimit)
}

// PathSearch finds the cheapest simple path from src to dst of at most
// MaxHops hops. Intermediate assets are drawn from each node's candidate
// set: the fixed candidates, dst, and the deepest routable assets. It also
// returns the spill price, the best price of any other path found to dst,
// which bounds how far the best path should be filled before searching
// again. When src equals dst the search looks for cycles.
func (k Keeper) PathSearch(ctx context.Context, src, dst types.AssetID, params types.RoutingParams) (*Path, *types.Price, error) {
	s := &pathSearch{
		k:      k,
		ctx:    ctx,
		params: params,
		dst:    dst,
		prices: make(map[types.DirectedTradingPair]*types.Price),
	}

	frontier := map[types.AssetID]Path{src: {Start: src, Price: types.OnePrice()}}
	var (
		best  *Path
		spill *types.Price
	)
	offerSpill := func(price types.Price) {
		if spill == nil || price.LT(*spill) {
			p := price
			spill = &p
		}
	}

	for hop := uint32(0); hop < params.MaxHops && len(frontier) > 0; hop++ {
		next := make(map[types.AssetID]Path)
		froms := make([]types.AssetID, 0, len(frontier))
		for id := range frontier {
			froms = append(froms, id)
		}
		types.SortAssetIDs(froms)

		for _, from := range froms {
			path := frontier[from]
			candidates, err := s.candidates(from)
			if err != nil {
				return nil, nil, err
			}
			for _, to := range candidates {
				if to == from {
					continue
				}
				if path.visits(to) && !(to == dst && to == src) {
					continue
				}
				price, found, err := s.hopPrice(types.NewDirectedTradingPair(from, to))
				if err != nil {
					return nil, nil, err
				}
				if !found {
					continue
				}
				extended := path.extend(to, price)

				if to == dst {
					if params.PriceLimit != nil && !extended.Price.LT(*params.PriceLimit) {
						continue
					}
					switch {
					case best == nil:
						best = &extended
					case comparePaths(extended, *best) < 0:
						offerSpill(best.Price)
						best = &extended
					default:
						offerSpill(extended.Price)
					}
					continue
				}
				if current, ok := next[to]; !ok || comparePaths(extended, current) < 0 {
					next[to] = extended
				}
			}
		}
		frontier = next
	}

	if best != nil {
		spillStr := "none"
		if spill != nil {
			spillStr = spill.String()
		}
		k.Logger(ctx).Debug("path search", "path", best.String(), "spill", spillStr, "params", params.String())
	}
	return best, spill, nil
}
