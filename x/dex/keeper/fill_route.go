package keeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/sdex/x/dex/types"
)

// ExecutionOverflowError reports the position whose reserves would exceed
// MaxReserveAmount. Routing closes the position and tries again.
type ExecutionOverflowError struct {
	PositionID types.PositionID
}

func (e *ExecutionOverflowError) Error() string {
	return fmt.Sprintf("overflow when executing against position %s", e.PositionID)
}

func (e *ExecutionOverflowError) Unwrap() error {
	return types.ErrExecutionOverflow
}

// FillRoute trades input along hops, consuming the cheapest positions of
// each hop in lockstep. Every iteration either exhausts the input or
// exhausts one position on the route.
//
// Filling stops once the route's marginal price exceeds spill, although the
// first iteration always executes so that routing makes progress. When
// limit is set no iteration executes at a price at or above it. Writes only
// reach ctx if the whole fill succeeds.
func (k Keeper) FillRoute(ctx context.Context, input types.Value, hops []types.AssetID, spill, limit *types.Price) (types.SwapExecution, error) {
	start := time.Now()
	route := append([]types.AssetID{input.AssetID}, hops...)
	if len(route) < 2 {
		return types.SwapExecution{}, types.ErrInvalidRoute.Wrapf("route of length %d", len(route))
	}
	pairs := make([]types.DirectedTradingPair, 0, len(route)-1)
	for i := 0; i+1 < len(route); i++ {
		pairs = append(pairs, types.NewDirectedTradingPair(route[i], route[i+1]))
	}

	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()
	f, err := k.loadFrontier(cacheCtx, pairs)
	if err != nil {
		return types.SwapExecution{}, err
	}

	remaining := input.Amount
	filledOnce := false
	for {
		constraint, err := f.senseCapacityConstraint(types.NewValue(remaining, input.AssetID))
		if err != nil {
			return types.SwapExecution{}, err
		}

		var tx *frontierTx
		if constraint >= 0 {
			tx, err = f.fillConstrained(constraint)
		} else {
			tx, err = f.fillUnconstrained(types.NewValue(remaining, input.AssetID))
		}
		if err != nil {
			return types.SwapExecution{}, err
		}

		price, finite := tx.price()
		apply := true
		if spill != nil {
			apply = (finite && price.LTE(*spill)) || !filledOnce
		}
		if apply && limit != nil {
			apply = finite && price.LT(*limit)
		}
		if !apply {
			k.Logger(ctx).Debug("route price exceeds bound, stop filling", "price", price.String(), "finite", finite)
			break
		}

		consumed := f.apply(tx)
		filledOnce = true
		remaining = remaining.Sub(consumed)
		if remaining.IsNegative() {
			return types.SwapExecution{}, types.ErrInvariantViolation.Wrapf("route consumed more than its input %s", input)
		}

		more, err := f.replaceEmptyPositions()
		if err != nil {
			return types.SwapExecution{}, err
		}
		if !more {
			break
		}
		if constraint < 0 {
			if !remaining.IsZero() {
				return types.SwapExecution{}, types.ErrInvariantViolation.Wrapf(
					"unconstrained fill left %s of %s", remaining, input.AssetID)
			}
			break
		}
	}

	if err := f.save(); err != nil {
		return types.SwapExecution{}, err
	}
	execution := f.execution()
	if err := k.checkValueConservation(cacheCtx, route...); err != nil {
		return types.SwapExecution{}, err
	}
	write()

	k.metrics.RouteHops.Observe(float64(len(pairs)))
	k.Logger(ctx).Debug("filled route",
		"input", execution.Input.String(),
		"output", execution.Output.String(),
		"traces", len(execution.Traces),
		"elapsed", time.Since(start).String(),
	)
	return execution, nil
}

// frontier is the cheapest unused position of each hop along a route.
type frontier struct {
	k     Keeper
	ctx   context.Context
	pairs []types.DirectedTradingPair
	// positions hold in-memory reserves; stored is what the store last saw.
	positions []types.Position
	stored    []types.Position
	ids       []types.PositionID
	// A position may appear on several hops of a cyclic route but is used once.
	used    map[types.PositionID]struct{}
	cursors map[types.DirectedTradingPair]*positionCursor
	traces  [][]types.Value
	fills   []types.Fill
}

type frontierTx struct {
	reserves []types.Reserves
	// trace[0] is the route input and trace[i+1] the output of hop i.
	trace []math.Int
}

func (tx *frontierTx) price() (types.Price, bool) {
	return types.PriceFromAmounts(tx.trace[0], tx.trace[len(tx.trace)-1])
}

func (k Keeper) loadFrontier(ctx context.Context, pairs []types.DirectedTradingPair) (*frontier, error) {
	f := &frontier{
		k:       k,
		ctx:     ctx,
		pairs:   pairs,
		used:    make(map[types.PositionID]struct{}),
		cursors: make(map[types.DirectedTradingPair]*positionCursor),
	}
	for _, pair := range pairs {
		if _, ok := f.cursors[pair]; !ok {
			f.cursors[pair] = k.newPositionCursor(ctx, pair)
		}
	}
	for _, pair := range pairs {
		position, id, found, err := f.nextUnused(pair)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, types.ErrInsufficientLiquidity.Wrapf("pair %s", pair)
		}
		f.positions = append(f.positions, position)
		f.stored = append(f.stored, position)
		f.ids = append(f.ids, id)
	}
	return f, nil
}

func (f *frontier) nextUnused(pair types.DirectedTradingPair) (types.Position, types.PositionID, bool, error) {
	cursor := f.cursors[pair]
	for {
		position, id, found, err := cursor.Next()
		if err != nil || !found {
			return types.Position{}, types.PositionID{}, false, err
		}
		if _, ok := f.used[id]; ok {
			continue
		}
		f.used[id] = struct{}{}
		return position, id, true, nil
	}
}

func (f *frontier) fillError(i int, err error) error {
	if errors.Is(err, types.ErrExecutionOverflow) {
		return &ExecutionOverflowError{PositionID: f.ids[i]}
	}
	return err
}

// senseCapacityConstraint trial-fills input along the frontier and returns
// the index of the last position unable to absorb its input, or -1.
func (f *frontier) senseCapacityConstraint(input types.Value) (int, error) {
	constraint := -1
	current := input
	for i, position := range f.positions {
		if !position.Phi.MatchesInput(current.AssetID) {
			return 0, types.ErrAssetMismatch.Wrapf("input %s does not trade on %s", current.AssetID, position.Phi.Pair)
		}
		unfilled, _, output, err := position.Phi.Fill(current, position.Reserves)
		if err != nil {
			return 0, f.fillError(i, err)
		}
		if unfilled.Amount.IsPositive() {
			constraint = i
		}
		current = output
	}
	return constraint, nil
}

func (f *frontier) newTx() *frontierTx {
	return &frontierTx{
		reserves: make([]types.Reserves, len(f.positions)),
		trace:    make([]math.Int, len(f.pairs)+1),
	}
}

func (f *frontier) fillUnconstrained(input types.Value) (*frontierTx, error) {
	tx := f.newTx()
	tx.trace[0] = input.Amount
	if err := f.fillForward(tx, 0, input); err != nil {
		return nil, err
	}
	return tx, nil
}

// fillConstrained exhausts the constraining position exactly, works
// backwards to the route input it requires and forwards to the output it
// produces.
func (f *frontier) fillConstrained(constraint int) (*frontierTx, error) {
	tx := f.newTx()
	end := f.pairs[constraint].End
	reserve, ok := f.positions[constraint].ReservesFor(end)
	if !ok {
		return nil, types.ErrAssetMismatch.Wrapf("%s not in %s", end, f.positions[constraint].Phi.Pair)
	}
	exhausted := types.NewValue(reserve, end)
	if err := f.fillBackward(tx, constraint, exhausted); err != nil {
		return nil, err
	}
	if err := f.fillForward(tx, constraint+1, exhausted); err != nil {
		return nil, err
	}
	return tx, nil
}

func (f *frontier) fillForward(tx *frontierTx, from int, input types.Value) error {
	current := input
	for i := from; i < len(f.positions); i++ {
		unfilled, next, output, err := f.positions[i].Phi.Fill(current, f.positions[i].Reserves)
		if err != nil {
			return f.fillError(i, err)
		}
		if !unfilled.Amount.IsZero() {
			return types.ErrInvariantViolation.Wrapf("forward fill of hop %d left %s unfilled", i, unfilled)
		}
		tx.reserves[i] = next
		tx.trace[i+1] = output.Amount
		current = output
	}
	return nil
}

func (f *frontier) fillBackward(tx *frontierTx, from int, output types.Value) error {
	current := output
	for i := from; i >= 0; i-- {
		tx.trace[i+1] = current.Amount
		next, input, ok, err := f.positions[i].Phi.FillOutput(f.positions[i].Reserves, current)
		if err != nil {
			return f.fillError(i, err)
		}
		if !ok {
			return types.ErrInvariantViolation.Wrapf("backward fill of hop %d exceeds reserves", i)
		}
		tx.reserves[i] = next
		current = input
	}
	tx.trace[0] = current.Amount
	return nil
}

// apply commits tx to the in-memory frontier and returns the input consumed.
func (f *frontier) apply(tx *frontierTx) math.Int {
	trace := make([]types.Value, 0, len(tx.trace))
	trace = append(trace, types.NewValue(tx.trace[0], f.pairs[0].Start))
	for i := range f.positions {
		f.positions[i].Reserves = tx.reserves[i]
		trace = append(trace, types.NewValue(tx.trace[i+1], f.pairs[i].End))
		f.fills = append(f.fills, types.Fill{
			PositionID: f.ids[i],
			Input:      types.NewValue(tx.trace[i], f.pairs[i].Start),
			Output:     types.NewValue(tx.trace[i+1], f.pairs[i].End),
		})
	}
	f.traces = append(f.traces, trace)
	return tx.trace[0]
}

func (f *frontier) routeContext() types.DirectedTradingPair {
	return types.NewDirectedTradingPair(f.pairs[0].Start, f.pairs[len(f.pairs)-1].End)
}

func (f *frontier) write(i int) error {
	written, err := f.k.positionExecution(f.ctx, f.stored[i], f.positions[i], f.routeContext())
	if err != nil {
		return err
	}
	f.positions[i] = written
	f.stored[i] = written
	return nil
}

// replaceEmptyPositions writes out and replaces every position whose output
// reserves are exhausted. It reports false when a hop has no positions left.
func (f *frontier) replaceEmptyPositions() (bool, error) {
	for i, pair := range f.pairs {
		reserve, _ := f.positions[i].ReservesFor(pair.End)
		if !reserve.IsZero() {
			continue
		}
		if err := f.write(i); err != nil {
			return false, err
		}
		position, id, found, err := f.nextUnused(pair)
		if err != nil {
			return false, err
		}
		if !found {
			return false, nil
		}
		f.positions[i] = position
		f.stored[i] = position
		f.ids[i] = id
	}
	return true, nil
}

func (f *frontier) save() error {
	for i := range f.positions {
		if err := f.write(i); err != nil {
			return err
		}
	}
	return nil
}

func (f *frontier) execution() types.SwapExecution {
	input, output := math.ZeroInt(), math.ZeroInt()
	for _, trace := range f.traces {
		input = input.Add(trace[0].Amount)
		output = output.Add(trace[len(trace)-1].Amount)
	}
	return types.SwapExecution{
		Traces: f.traces,
		Fills:  f.fills,
		Input:  types.NewValue(input, f.pairs[0].Start),
		Output: types.NewValue(output, f.pairs[len(f.pairs)-1].End),
	}
}
