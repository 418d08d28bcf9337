// Package tabledef loads per-event transition maps from YAML. A table names
// the machine's states in index order and lists, for every event, the target
// for each state:
//
//	machine: player
//	states: [Empty, Open, Stopped]
//	events:
//	  Play: [IGNORED, IGNORED, Stopped]
//
// IGNORED and CANNOT_HAPPEN map to the engine sentinels.
package tabledef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/librescoot/tablefsm"
)

// Sentinel spellings accepted in event lists.
const (
	Ignored      = "IGNORED"
	CannotHappen = "CANNOT_HAPPEN"
)

var (
	ErrUnknownState   = errors.New("unknown state")
	ErrDuplicateState = errors.New("duplicate state")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrStateOrder     = errors.New("state order mismatch")
)

// File is the YAML document layout.
type File struct {
	Machine string              `yaml:"machine"`
	States  []string            `yaml:"states"`
	Events  map[string][]string `yaml:"events"`
}

// Table is a validated set of transition maps.
type Table struct {
	machine string
	states  []string
	index   map[string]tablefsm.StateID
	events  map[string]tablefsm.TransitionMap
}

// Load reads and parses a table file.
func Load(path string) (*Table, error) {
	// #nosec G304 -- table paths come from the integrator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a single YAML document strictly and resolves every event.
func Parse(data []byte) (*Table, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty table definition")
		}
		return nil, fmt.Errorf("strict table parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("table definition contains multiple documents or trailing content")
	}
	return Build(f)
}

// Build validates f and resolves its state names.
func Build(f File) (*Table, error) {
	if len(f.States) == 0 || len(f.States) >= int(tablefsm.EventIgnored) {
		return nil, fmt.Errorf("%w: %d states", tablefsm.ErrMaxStates, len(f.States))
	}

	t := &Table{
		machine: f.Machine,
		states:  append([]string(nil), f.States...),
		index:   make(map[string]tablefsm.StateID, len(f.States)),
		events:  make(map[string]tablefsm.TransitionMap, len(f.Events)),
	}
	for i, name := range f.States {
		if name == Ignored || name == CannotHappen {
			return nil, fmt.Errorf("state %d: %q is reserved", i, name)
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateState, name)
		}
		t.index[name] = tablefsm.StateID(i)
	}

	maxStates := tablefsm.StateID(len(f.States))
	for event, targets := range f.Events {
		tm := make(tablefsm.TransitionMap, len(targets))
		for i, name := range targets {
			target, err := t.resolve(name)
			if err != nil {
				return nil, fmt.Errorf("event %s, entry %d: %w", event, i, err)
			}
			tm[i] = target
		}
		if err := tm.Validate(maxStates); err != nil {
			return nil, fmt.Errorf("event %s: %w", event, err)
		}
		t.events[event] = tm
	}
	return t, nil
}

func (t *Table) resolve(name string) (tablefsm.StateID, error) {
	switch name {
	case Ignored:
		return tablefsm.EventIgnored, nil
	case CannotHappen:
		return tablefsm.CannotHappen, nil
	}
	id, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	return id, nil
}

// Machine returns the machine name declared by the table.
func (t *Table) Machine() string {
	return t.machine
}

// States returns the state names in index order.
func (t *Table) States() []string {
	return append([]string(nil), t.states...)
}

// State returns the index of the named state.
func (t *Table) State(name string) (tablefsm.StateID, bool) {
	id, ok := t.index[name]
	return id, ok
}

// Events returns the event names, sorted.
func (t *Table) Events() []string {
	names := make([]string, 0, len(t.events))
	for name := range t.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Event returns the transition map of the named event.
func (t *Table) Event(name string) (tablefsm.TransitionMap, error) {
	tm, ok := t.events[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	return tm, nil
}

// CheckStates verifies that the table declares exactly the given states in
// the given order, so table indices match the machine's state constants.
func (t *Table) CheckStates(names ...string) error {
	if len(names) != len(t.states) {
		return fmt.Errorf("%w: table has %d states, machine has %d", ErrStateOrder, len(t.states), len(names))
	}
	for i, name := range names {
		if t.states[i] != name {
			return fmt.Errorf("%w: state %d is %q in table, %q in machine", ErrStateOrder, i, t.states[i], name)
		}
	}
	return nil
}
