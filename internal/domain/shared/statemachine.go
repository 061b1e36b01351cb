package shared

// StateMachine is an explicit transition table over a string-backed status type
type StateMachine[S ~string] struct {
	resource    string
	transitions map[S][]S
}

// NewStateMachine builds a machine. States missing from the table, or mapped
// to an empty list, are terminal.
func NewStateMachine[S ~string](resource string, transitions map[S][]S) *StateMachine[S] {
	return &StateMachine[S]{resource: resource, transitions: transitions}
}

// CanTransition reports whether from -> to is in the table
func (m *StateMachine[S]) CanTransition(from, to S) bool {
	for _, next := range m.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Validate returns an INVALID_STATE error when from -> to is not allowed
func (m *StateMachine[S]) Validate(from, to S) error {
	if m.CanTransition(from, to) {
		return nil
	}
	return NewTransitionError(m.resource, string(from), string(to))
}

// Targets returns the statuses reachable from from
func (m *StateMachine[S]) Targets(from S) []S {
	out := make([]S, len(m.transitions[from]))
	copy(out, m.transitions[from])
	return out
}

// IsTerminal reports whether no transition leaves from
func (m *StateMachine[S]) IsTerminal(from S) bool {
	return len(m.transitions[from]) == 0
}
