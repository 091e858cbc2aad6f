package resource

// StateMachine describes the lifecycle of a transactional resource. Terminal
// states reject both update and delete: once a record's real-world lifecycle
// has concluded it is frozen.
type StateMachine struct {
	// Initial is the state assigned on create when the caller omits one.
	Initial string
	// Transitions maps each state to the states reachable from it.
	Transitions map[string][]string
	// Terminal lists the states that freeze the record.
	Terminal []string
}

// Lifecycle builds the standard three-step machine used by the transactional
// resources: initial → middle → terminal, with "cancelled" reachable from any
// non-terminal state.
func Lifecycle(initial, middle, terminal string) *StateMachine {
	return &StateMachine{
		Initial: initial,
		Transitions: map[string][]string{
			initial:     {middle, "cancelled"},
			middle:      {terminal, "cancelled"},
			terminal:    {},
			"cancelled": {},
		},
		Terminal: []string{terminal},
	}
}

// Known reports whether state is part of the machine.
func (m *StateMachine) Known(state string) bool {
	_, ok := m.Transitions[state]
	return ok
}

// CanTransition reports whether from → to is an allowed step.
func (m *StateMachine) CanTransition(from, to string) bool {
	for _, next := range m.Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether state rejects further mutation. Cancelled
// records accept no transitions either, but they are not terminal in the
// business sense and may still be deleted.
func (m *StateMachine) IsTerminal(state string) bool {
	for _, s := range m.Terminal {
		if s == state {
			return true
		}
	}
	return false
}

// States returns every state the machine knows.
func (m *StateMachine) States() []string {
	states := make([]string, 0, len(m.Transitions))
	for s := range m.Transitions {
		states = append(states, s)
	}
	return states
}
