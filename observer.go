package tablefsm

// Observer is notified of dispatch activity. Callbacks run synchronously on
// the dispatching goroutine and must not raise events.
type Observer interface {
	// DispatchStarted runs when an external event begins dispatch.
	DispatchStarted(m *Machine, target StateID)
	// StateChanged runs after the current state is set, before the state action.
	StateChanged(m *Machine, from, to StateID)
	// GuardRejected runs when a guard suppresses a transition.
	GuardRejected(m *Machine, target StateID)
	// EventIgnored runs when an external event resolves to EventIgnored.
	EventIgnored(m *Machine)
	// DispatchFinished runs once the run-to-completion loop is quiescent.
	// steps counts the loop iterations, including guard-rejected ones.
	DispatchFinished(m *Machine, steps int)
}

// NopObserver implements Observer with no-ops, for embedding.
type NopObserver struct{}

func (NopObserver) DispatchStarted(*Machine, StateID)       {}
func (NopObserver) StateChanged(*Machine, StateID, StateID) {}
func (NopObserver) GuardRejected(*Machine, StateID)         {}
func (NopObserver) EventIgnored(*Machine)                   {}
func (NopObserver) DispatchFinished(*Machine, int)          {}
