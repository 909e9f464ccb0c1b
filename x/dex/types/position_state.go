package types

import "fmt"

// PositionStateKind enumerates the lifecycle stages of a position.
type PositionStateKind string

const (
	PositionStateOpened    PositionStateKind = "opened"
	PositionStateClosed    PositionStateKind = "closed"
	PositionStateWithdrawn PositionStateKind = "withdrawn"
)

// PositionState is the lifecycle state of a position. Sequence counts
// withdrawals and is only meaningful for PositionStateWithdrawn.
type PositionState struct {
	Kind     PositionStateKind `json:"kind"`
	Sequence uint64            `json:"sequence,omitempty"`
}

// OpenedState is the state of a live position.
func OpenedState() PositionState { return PositionState{Kind: PositionStateOpened} }

// ClosedState is the state of a closed, not yet withdrawn position.
func ClosedState() PositionState { return PositionState{Kind: PositionStateClosed} }

// WithdrawnState is the state after withdrawal number sequence.
func WithdrawnState(sequence uint64) PositionState {
	return PositionState{Kind: PositionStateWithdrawn, Sequence: sequence}
}

// IsOpened reports whether the position participates in routing.
func (s PositionState) IsOpened() bool { return s.Kind == PositionStateOpened }

// NextWithdrawal returns the state reached by withdrawing from s:
// Closed becomes Withdrawn{0} and Withdrawn{n} becomes Withdrawn{n+1}.
func (s PositionState) NextWithdrawal() (PositionState, error) {
	switch s.Kind {
	case PositionStateClosed:
		return WithdrawnState(0), nil
	case PositionStateWithdrawn:
		return WithdrawnState(s.Sequence + 1), nil
	default:
		return PositionState{}, ErrPositionNotClosed.Wrapf("state %s", s)
	}
}

// Validate rejects unknown kinds.
func (s PositionState) Validate() error {
	switch s.Kind {
	case PositionStateOpened, PositionStateClosed:
		if s.Sequence != 0 {
			return ErrInvalidPosition.Wrapf("state %s carries sequence %d", s.Kind, s.Sequence)
		}
		return nil
	case PositionStateWithdrawn:
		return nil
	default:
		return ErrInvalidPosition.Wrapf("unknown position state %q", s.Kind)
	}
}

func (s PositionState) String() string {
	if s.Kind == PositionStateWithdrawn {
		return fmt.Sprintf("%s(%d)", s.Kind, s.Sequence)
	}
	return string(s.Kind)
}
