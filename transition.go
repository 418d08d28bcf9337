package tablefsm

import (
	"fmt"

	"github.com/librescoot/tablefsm/internal/log"
)

// TransitionMap is the lookup of one external event: entry i holds the
// target, or a sentinel, for an event arriving in state i.
type TransitionMap []StateID

// Validate checks that the map has one entry per state and that every entry
// is a state index or a sentinel.
func (tm TransitionMap) Validate(maxStates StateID) error {
	if len(tm) != int(maxStates) {
		return fmt.Errorf("%w: transition map has %d entries, want %d", ErrTableSize, len(tm), maxStates)
	}
	return tm.validateTargets(maxStates)
}

func (tm TransitionMap) validateTargets(maxStates StateID) error {
	for i, target := range tm {
		if target != EventIgnored && target != CannotHappen && target >= maxStates {
			return fmt.Errorf("%w: entry %d targets state %d", ErrTargetRange, i, target)
		}
	}
	return nil
}

// BaseTransitionMap is the lookup of an event declared by a base machine that
// only knows its own states. Map covers the base states; an event arriving in
// any state a derived machine added goes to Fallback.
type BaseTransitionMap struct {
	Map      TransitionMap
	Fallback StateID
}

// Validate checks the partial map against the base state count.
func (b BaseTransitionMap) Validate(baseStates StateID) error {
	if len(b.Map) != int(baseStates) {
		return fmt.Errorf("%w: base transition map has %d entries, want %d", ErrTableSize, len(b.Map), baseStates)
	}
	return b.Map.validateTargets(baseStates)
}

// Transition dispatches the event described by tm for the current state.
// The lookup and the dispatch run under the machine's locker.
func (m *Machine) Transition(tm TransitionMap, data EventData) {
	defer m.lock()()
	if len(tm) != int(m.maxStates) {
		m.faultf(1, FaultTableSize, m.newState, "transition map has %d entries, want %d", len(tm), m.maxStates)
	}
	if m.currentState >= m.maxStates {
		m.faultf(1, FaultOutOfRange, m.newState, "current state %d outside [0, %d)", m.currentState, m.maxStates)
	}
	m.externalEvent(tm[m.currentState], data)
}

// TransitionFrom dispatches a base-level event. While the machine is in a
// state beyond the base map the event goes to b.Fallback, whichever derived
// state is active; otherwise the base map is consulted.
func (m *Machine) TransitionFrom(b BaseTransitionMap, data EventData) {
	defer m.lock()()
	current := m.currentState
	if int(current) >= len(b.Map) && current < m.maxStates {
		m.logger.Debug().
			Str(log.FieldState, m.StateName(current)).
			Str("fallback", m.StateName(b.Fallback)).
			Msg("event routed to base fallback")
		m.externalEvent(b.Fallback, data)
		return
	}
	if current >= m.maxStates {
		m.faultf(1, FaultOutOfRange, m.newState, "current state %d outside [0, %d)", current, m.maxStates)
	}
	m.externalEvent(b.Map[current], data)
}
