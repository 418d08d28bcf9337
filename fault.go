package tablefsm

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"

	"github.com/librescoot/tablefsm/internal/log"
)

// FaultKind classifies a programmer fault detected by the engine.
type FaultKind int

const (
	// FaultOutOfRange: a pending target is not a valid state index.
	FaultOutOfRange FaultKind = iota + 1
	// FaultPayloadType: a payload does not match the callback's declared type.
	FaultPayloadType
	// FaultTableSize: a table or lookup does not have one entry per state.
	FaultTableSize
	// FaultEntryExitEvent: an entry or exit action requested a transition.
	FaultEntryExitEvent
	// FaultCannotHappen: an event reached a state where it is impossible.
	FaultCannotHappen
	// FaultNoStateMap: a machine was built without exactly one state map.
	FaultNoStateMap
	// FaultNilAction: a state map entry has no state action.
	FaultNilAction
	// FaultNestedExternal: ExternalEvent was called while a dispatch was running.
	FaultNestedExternal
	// FaultInternalOutsideDispatch: InternalEvent was called with no dispatch running.
	FaultInternalOutsideDispatch
	// FaultEventPending: a second internal event was raised before the first ran.
	FaultEventPending
	// FaultDoubleRelease: a consumed pooled payload was released again.
	FaultDoubleRelease
)

var faultKindNames = map[FaultKind]string{
	FaultOutOfRange:              "out_of_range",
	FaultPayloadType:             "payload_type",
	FaultTableSize:               "table_size",
	FaultEntryExitEvent:          "entry_exit_event",
	FaultCannotHappen:            "cannot_happen",
	FaultNoStateMap:              "no_state_map",
	FaultNilAction:               "nil_action",
	FaultNestedExternal:          "nested_external",
	FaultInternalOutsideDispatch: "internal_outside_dispatch",
	FaultEventPending:            "event_pending",
	FaultDoubleRelease:           "double_release",
}

func (k FaultKind) String() string {
	if name, ok := faultKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FaultKind(%d)", int(k))
}

// Fault describes a broken table or model. The engine never recovers from a
// fault: after the handler runs it panics with the *Fault.
type Fault struct {
	Kind      FaultKind
	Machine   string
	MachineID string
	State     StateID // current state when the fault was raised
	Target    StateID // requested or pending target, if any
	File      string  // call site that detected the fault
	Line      int
	Err       error // carries the stack at the call site
}

func (f *Fault) Error() string {
	return fmt.Sprintf("tablefsm: %s fault in machine %q at %s:%d: %v",
		f.Kind, f.Machine, filepath.Base(f.File), f.Line, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// FaultHandler receives every fault before the engine halts. A handler may
// terminate the process; if it returns, the engine panics with the fault.
type FaultHandler func(*Fault)

// faultf reports a fault detected skip frames above its caller and halts.
// target is the transition the fault concerns.
func (m *Machine) faultf(skip int, kind FaultKind, target StateID, format string, args ...any) {
	_, file, line, _ := runtime.Caller(skip + 1)
	f := &Fault{
		Kind:      kind,
		Machine:   m.name,
		MachineID: m.id,
		State:     m.currentState,
		Target:    target,
		File:      file,
		Line:      line,
		Err:       errors.Errorf(format, args...),
	}

	m.logger.Error().
		Stack().
		Err(f.Err).
		Str(log.FieldFault, kind.String()).
		Str(log.FieldState, m.StateName(f.State)).
		Str(log.FieldTarget, m.StateName(f.Target)).
		Str(log.FieldFile, file).
		Int(log.FieldLine, line).
		Msg("state machine fault")

	if m.faultHandler != nil {
		m.faultHandler(f)
	}
	panic(f)
}
