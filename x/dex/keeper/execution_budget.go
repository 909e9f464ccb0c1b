package keeper

// ExecutionBudget bounds the number of path searches and route fills a
// single swap direction may perform in a block. Once exhausted, any input
// left is returned unfilled.
type ExecutionBudget struct {
	used uint32
	max  uint32
}

// NewExecutionBudget returns a budget of max iterations.
func NewExecutionBudget(max uint32) *ExecutionBudget {
	return &ExecutionBudget{max: max}
}

// Exhausted reports whether no iterations remain.
func (b *ExecutionBudget) Exhausted() bool {
	return b.used >= b.max
}

// Increment consumes one iteration.
func (b *ExecutionBudget) Increment() {
	b.used++
}

// Used returns the number of iterations consumed so far.
func (b *ExecutionBudget) Used() uint32 {
	return b.used
}
