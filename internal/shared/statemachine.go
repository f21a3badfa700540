package shared

// StateMachine validates transitions for a named entity. Both document
// lifecycles and the admin-account approval workflow share this primitive so
// transition rules are declared once per entity kind.
type StateMachine struct {
	entity      string
	transitions map[string][]string
	terminal    map[string]bool
}

// NewStateMachine builds a machine from an allowed-transition table. States
// with no outgoing transitions are terminal.
func NewStateMachine(entity string, transitions map[string][]string) *StateMachine {
	terminal := make(map[string]bool)
	known := make(map[string]bool)
	for from, tos := range transitions {
		known[from] = true
		for _, to := range tos {
			known[to] = true
		}
	}
	for state := range known {
		if len(transitions[state]) == 0 {
			terminal[state] = true
		}
	}
	return &StateMachine{entity: entity, transitions: transitions, terminal: terminal}
}

// CanTransition reports whether from -> to is an allowed edge.
func (m *StateMachine) CanTransition(from, to string) bool {
	for _, allowed := range m.transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates the move and returns an InvalidStateError naming the
// attempted and current states when it is not allowed.
func (m *StateMachine) Transition(from, to string) error {
	if m.CanTransition(from, to) {
		return nil
	}
	reason := ""
	if m.terminal[from] {
		reason = "state is terminal"
	}
	return &InvalidStateError{Entity: m.entity, From: from, To: to, Reason: reason}
}

// IsTerminal reports whether the state has no outgoing transitions.
func (m *StateMachine) IsTerminal(state string) bool {
	return m.terminal[state]
}
