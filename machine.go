package tablefsm

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/librescoot/tablefsm/internal/log"
)

// Machine is the dispatch engine of one state machine instance. Collaborator
// machines embed it, supply their state map at construction and call
// Transition, TransitionFrom or ExternalEvent from their event methods.
//
// A Machine is not safe for concurrent use unless a locker is supplied with
// WithLocker.
type Machine struct {
	id        string
	name      string
	maxStates StateID

	currentState   StateID
	newState       StateID
	eventGenerated bool
	eventData      EventData
	dispatching    bool

	stateMap   []Action
	stateMapEx []StateMapRowEx
	stateNames []string

	ownership           Ownership
	logger              zerolog.Logger
	faultHandler        FaultHandler
	locker              sync.Locker
	lockOwner           atomic.Uint64 // goroutine holding locker, 0 if none
	observers           []Observer
	stateChangeCallback func(from, to StateID)
}

// OnStateChange sets a callback invoked after each state change.
func (m *Machine) OnStateChange(fn func(from, to StateID)) {
	m.stateChangeCallback = fn
}

// CurrentState returns the current state
func (m *Machine) CurrentState() StateID {
	return m.currentState
}

// MaxStates returns the number of states
func (m *Machine) MaxStates() StateID {
	return m.maxStates
}

// Name returns the machine name
func (m *Machine) Name() string {
	return m.name
}

// ID returns the unique instance ID assigned at construction
func (m *Machine) ID() string {
	return m.id
}

// Ownership returns the payload ownership mode
func (m *Machine) Ownership() Ownership {
	return m.ownership
}

// Logger returns the machine's logger, annotated with its name and ID
func (m *Machine) Logger() zerolog.Logger {
	return m.logger
}

// StateName returns the configured name of s, or its index.
func (m *Machine) StateName(s StateID) string {
	if int(s) < len(m.stateNames) {
		return m.stateNames[s]
	}
	return s.String()
}

// ExternalEvent dispatches an event resolved to newState from outside the
// machine. It returns once the target state and every internal event it
// raised have run. In EngineOwned mode data is released before returning.
func (m *Machine) ExternalEvent(newState StateID, data EventData) {
	defer m.lock()()
	m.externalEvent(newState, data)
}

// externalEvent is ExternalEvent without the locker. Faults are reported at
// the caller of the exported event method.
func (m *Machine) externalEvent(newState StateID, data EventData) {
	if m.dispatching {
		m.faultf(2, FaultNestedExternal, newState, "external event to %s raised during dispatch", m.StateName(newState))
	}

	switch newState {
	case EventIgnored:
		m.logger.Debug().Str(log.FieldState, m.StateName(m.currentState)).Msg("event ignored")
		for _, o := range m.observers {
			o.EventIgnored(m)
		}
		m.release(data, true)
		return
	case CannotHappen:
		m.newState = CannotHappen
		m.faultf(2, FaultCannotHappen, CannotHappen, "event cannot happen in state %s", m.StateName(m.currentState))
	}

	for _, o := range m.observers {
		o.DispatchStarted(m, newState)
	}

	m.dispatching = true
	defer func() { m.dispatching = false }()

	m.raise(newState, data)
	steps := m.stateEngine()

	m.logger.Debug().
		Str(log.FieldState, m.StateName(m.currentState)).
		Int("steps", steps).
		Msg("dispatch complete")
	for _, o := range m.observers {
		o.DispatchFinished(m, steps)
	}
}

// InternalEvent requests a transition from inside a state action. The
// transition runs after the current action returns. Only one internal event
// may be pending at a time.
//
// Internal payloads are always released by the engine, after the step that
// consumes them. The payload the current action received is released when
// that action returns, so it must not be passed on: a pooled payload passed
// on is released twice and faults with FaultDoubleRelease.
func (m *Machine) InternalEvent(newState StateID, data EventData) {
	if !m.dispatching {
		m.faultf(1, FaultInternalOutsideDispatch, newState, "internal event to %s raised outside dispatch", m.StateName(newState))
	}
	if m.eventGenerated {
		m.faultf(1, FaultEventPending, newState, "internal event to %s raised while %s is pending",
			m.StateName(newState), m.StateName(m.newState))
	}
	m.raise(newState, data)
}

func (m *Machine) raise(newState StateID, data EventData) {
	m.newState = newState
	m.eventData = orNoEventData(data)
	m.eventGenerated = true
}

// take consumes the pending event
func (m *Machine) take() (StateID, EventData) {
	if m.newState >= m.maxStates {
		m.faultf(1, FaultOutOfRange, m.newState, "target state %s outside [0, %d)", m.newState, m.maxStates)
	}
	target, data := m.newState, m.eventData
	m.eventData = nil
	m.eventGenerated = false
	return target, data
}

// stateEngine runs pending events until none is left and returns the number
// of steps taken
func (m *Machine) stateEngine() int {
	if m.stateMap != nil {
		return m.runStateMap()
	}
	return m.runStateMapEx()
}

func (m *Machine) runStateMap() int {
	steps := 0
	external := true
	for m.eventGenerated {
		target, data := m.take()

		m.setState(target)
		m.stateMap[target].InvokeStateAction(m, data)

		m.release(data, external)
		external = false
		steps++
	}
	return steps
}

func (m *Machine) runStateMapEx() int {
	steps := 0
	external := true
	for m.eventGenerated {
		target, data := m.take()
		row := m.stateMapEx[target]
		exit := m.stateMapEx[m.currentState].Exit

		if row.invokeGuard(m, data) {
			if target != m.currentState {
				if exit != nil {
					exit.InvokeExitAction(m)
				}
				if row.Entry != nil {
					row.Entry.InvokeEntryAction(m, data)
				}
				if m.eventGenerated {
					m.faultf(0, FaultEntryExitEvent, target, "entry or exit action raised an event while entering %s", m.StateName(target))
				}
			}

			m.setState(target)
			row.Action.InvokeStateAction(m, data)
		} else {
			m.logger.Debug().
				Str(log.FieldState, m.StateName(m.currentState)).
				Str(log.FieldTarget, m.StateName(target)).
				Msg("guard rejected transition")
			for _, o := range m.observers {
				o.GuardRejected(m, target)
			}
		}

		m.release(data, external)
		external = false
		steps++
	}
	return steps
}

func (m *Machine) setState(to StateID) {
	from := m.currentState
	m.currentState = to

	m.logger.Debug().
		Str(log.FieldOldState, m.StateName(from)).
		Str(log.FieldNewState, m.StateName(to)).
		Msg("executing state")
	for _, o := range m.observers {
		o.StateChanged(m, from, to)
	}
	if m.stateChangeCallback != nil && from != to {
		m.stateChangeCallback(from, to)
	}
}

// release drops a consumed payload. In CallerOwned mode the payload of the
// external event stays with the caller.
func (m *Machine) release(data EventData, external bool) {
	if external && m.ownership == CallerOwned {
		return
	}
	if p, ok := data.(pooled); ok && p.block().released() {
		m.faultf(1, FaultDoubleRelease, m.currentState, "payload %T released twice", data)
	}
	releaseData(data)
}
