package tablefsm

import "reflect"

// Action is a state action bound to its payload type. The engine invokes it
// after the machine has switched to the state.
type Action interface {
	InvokeStateAction(m *Machine, data EventData)
}

// Guard decides whether a transition into its state may proceed.
type Guard interface {
	InvokeGuardCondition(m *Machine, data EventData) bool
}

// Entry runs when the machine enters its state from a different state.
type Entry interface {
	InvokeEntryAction(m *Machine, data EventData)
}

// Exit runs when the machine leaves its state for a different state.
type Exit interface {
	InvokeExitAction(m *Machine)
}

// StateAction binds fn as a state action expecting payloads of type D.
func StateAction[D any](fn func(D)) Action {
	if fn == nil {
		return nil
	}
	return stateAction[D]{fn: fn}
}

// GuardCondition binds fn as a guard expecting payloads of type D.
func GuardCondition[D any](fn func(D) bool) Guard {
	if fn == nil {
		return nil
	}
	return guardCondition[D]{fn: fn}
}

// EntryAction binds fn as an entry action expecting payloads of type D.
func EntryAction[D any](fn func(D)) Entry {
	if fn == nil {
		return nil
	}
	return entryAction[D]{fn: fn}
}

// ExitAction binds fn as an exit action. Exit actions take no payload.
func ExitAction(fn func()) Exit {
	if fn == nil {
		return nil
	}
	return exitAction{fn: fn}
}

type stateAction[D any] struct {
	fn func(D)
}

func (a stateAction[D]) InvokeStateAction(m *Machine, data EventData) {
	a.fn(narrow[D](m, data, "state action"))
}

type guardCondition[D any] struct {
	fn func(D) bool
}

func (g guardCondition[D]) InvokeGuardCondition(m *Machine, data EventData) bool {
	return g.fn(narrow[D](m, data, "guard"))
}

type entryAction[D any] struct {
	fn func(D)
}

func (e entryAction[D]) InvokeEntryAction(m *Machine, data EventData) {
	e.fn(narrow[D](m, data, "entry action"))
}

type exitAction struct {
	fn func()
}

func (e exitAction) InvokeExitAction(*Machine) {
	e.fn()
}

// narrow asserts the payload to the callback's declared type. A mismatch
// means the table routes an event to a state that cannot accept it.
func narrow[D any](m *Machine, data EventData, role string) D {
	d, ok := data.(D)
	if !ok {
		m.faultf(1, FaultPayloadType, m.newState, "%s expects %s, got %T", role, reflect.TypeOf((*D)(nil)).Elem(), data)
	}
	return d
}
