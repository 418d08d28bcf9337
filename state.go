package tablefsm

// StateMapRowEx is one row of an extended state map. Only Action is required.
type StateMapRowEx struct {
	Action Action
	Guard  Guard // nil means the transition is always allowed
	Entry  Entry
	Exit   Exit
}

// RowOption is a functional option for configuring a StateMapRowEx
type RowOption func(*StateMapRowEx)

// Row builds an extended state map row for action.
func Row(action Action, opts ...RowOption) StateMapRowEx {
	r := StateMapRowEx{Action: action}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithGuard sets the guard evaluated before entering the state
func WithGuard(g Guard) RowOption {
	return func(r *StateMapRowEx) {
		r.Guard = g
	}
}

// WithEntry sets the entry action for the state
func WithEntry(e Entry) RowOption {
	return func(r *StateMapRowEx) {
		r.Entry = e
	}
}

// WithExit sets the exit action for the state
func WithExit(e Exit) RowOption {
	return func(r *StateMapRowEx) {
		r.Exit = e
	}
}

// invokeGuard evaluates the row's guard; a row without one always passes.
func (r StateMapRowEx) invokeGuard(m *Machine, data EventData) bool {
	if r.Guard == nil {
		return true
	}
	return r.Guard.InvokeGuardCondition(m, data)
}
