package tablefsm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/librescoot/tablefsm/internal/log"
)

// Definition errors returned by New and the Validate helpers.
var (
	ErrMaxStates     = errors.New("invalid state count")
	ErrInitialState  = errors.New("initial state out of range")
	ErrNoStateMap    = errors.New("no state map")
	ErrBothStateMaps = errors.New("both state map flavors supplied")
	ErrTableSize     = errors.New("table size mismatch")
	ErrNilAction     = errors.New("state has no action")
	ErrTargetRange   = errors.New("transition target out of range")
	ErrStateNames    = errors.New("state name count mismatch")
)

// MachineOption is a functional option for configuring a Machine
type MachineOption func(*Machine)

// WithName sets the machine name used in logs, metrics and faults
func WithName(name string) MachineOption {
	return func(m *Machine) {
		m.name = name
	}
}

// WithInitialState sets the state the machine starts in. The state's action
// is not run until an event targets it.
func WithInitialState(s StateID) MachineOption {
	return func(m *Machine) {
		m.currentState = s
	}
}

// WithStateMap supplies a simple state map: one action per state
func WithStateMap(actions ...Action) MachineOption {
	return func(m *Machine) {
		m.stateMap = actions
	}
}

// WithStateMapEx supplies an extended state map: one row per state
func WithStateMapEx(rows ...StateMapRowEx) MachineOption {
	return func(m *Machine) {
		m.stateMapEx = rows
	}
}

// WithOwnership selects the payload ownership mode
func WithOwnership(o Ownership) MachineOption {
	return func(m *Machine) {
		m.ownership = o
	}
}

// WithLogger sets the logger for the machine
func WithLogger(logger zerolog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithFaultHandler sets the handler that sees every fault before the halt
func WithFaultHandler(h FaultHandler) MachineOption {
	return func(m *Machine) {
		m.faultHandler = h
	}
}

// WithLocker serializes the event methods ExternalEvent, Transition and
// TransitionFrom with l, so the lookup of the current state and the dispatch
// it starts are atomic with respect to other goroutines. An event method
// called from a callback on the dispatching goroutine does not lock again; it
// faults with FaultNestedExternal. Without a locker the machine must not be
// shared between goroutines.
func WithLocker(l sync.Locker) MachineOption {
	return func(m *Machine) {
		m.locker = l
	}
}

// WithObserver adds an observer notified of every dispatch step
func WithObserver(o Observer) MachineOption {
	return func(m *Machine) {
		m.observers = append(m.observers, o)
	}
}

// WithStateNames names the states, in index order
func WithStateNames(names ...string) MachineOption {
	return func(m *Machine) {
		m.stateNames = names
	}
}

// WithStateChangeCallback sets a callback invoked after each state change
func WithStateChangeCallback(fn func(from, to StateID)) MachineOption {
	return func(m *Machine) {
		m.stateChangeCallback = fn
	}
}

// New creates a machine with maxStates states. Exactly one of WithStateMap
// and WithStateMapEx must be given, with one entry per state.
func New(maxStates StateID, opts ...MachineOption) (*Machine, error) {
	m := &Machine{
		id:        uuid.NewString(),
		name:      "machine",
		maxStates: maxStates,
		logger:    DefaultLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}

	m.logger = m.logger.With().
		Str(log.FieldMachine, m.name).
		Str(log.FieldMachineID, m.id).
		Logger()

	return m, nil
}

// MustNew is like New but reports a definition error as a fault.
func MustNew(maxStates StateID, opts ...MachineOption) *Machine {
	m, err := New(maxStates, opts...)
	if err != nil {
		bad := &Machine{name: "machine", maxStates: maxStates, logger: DefaultLogger()}
		for _, opt := range opts {
			opt(bad)
		}
		bad.faultf(1, definitionFaultKind(err), bad.currentState, "%v", err)
	}
	return m
}

// definitionFaultKind maps a definition error to the fault MustNew raises.
func definitionFaultKind(err error) FaultKind {
	switch {
	case errors.Is(err, ErrMaxStates), errors.Is(err, ErrInitialState), errors.Is(err, ErrTargetRange):
		return FaultOutOfRange
	case errors.Is(err, ErrTableSize), errors.Is(err, ErrStateNames):
		return FaultTableSize
	case errors.Is(err, ErrNilAction):
		return FaultNilAction
	default:
		return FaultNoStateMap
	}
}

// validate checks the machine definition
func (m *Machine) validate() error {
	if m.maxStates == 0 || m.maxStates >= EventIgnored {
		return fmt.Errorf("%w: %d (must be in [1, %d))", ErrMaxStates, m.maxStates, EventIgnored)
	}
	if m.currentState >= m.maxStates {
		return fmt.Errorf("%w: %d", ErrInitialState, m.currentState)
	}

	switch {
	case m.stateMap == nil && m.stateMapEx == nil:
		return ErrNoStateMap
	case m.stateMap != nil && m.stateMapEx != nil:
		return ErrBothStateMaps
	case m.stateMap != nil:
		if len(m.stateMap) != int(m.maxStates) {
			return fmt.Errorf("%w: state map has %d entries, want %d", ErrTableSize, len(m.stateMap), m.maxStates)
		}
		for i, a := range m.stateMap {
			if a == nil {
				return fmt.Errorf("%w: state %d", ErrNilAction, i)
			}
		}
	default:
		if len(m.stateMapEx) != int(m.maxStates) {
			return fmt.Errorf("%w: extended state map has %d entries, want %d", ErrTableSize, len(m.stateMapEx), m.maxStates)
		}
		for i, r := range m.stateMapEx {
			if r.Action == nil {
				return fmt.Errorf("%w: state %d", ErrNilAction, i)
			}
		}
	}

	if m.stateNames != nil && len(m.stateNames) != int(m.maxStates) {
		return fmt.Errorf("%w: %d names for %d states", ErrStateNames, len(m.stateNames), m.maxStates)
	}
	return nil
}
