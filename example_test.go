package tablefsm_test

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/librescoot/tablefsm"
)

// Example: a door that can be opened, closed and locked
func Example_door() {
	const (
		stClosed tablefsm.StateID = iota
		stOpen
		stLocked
		numStates
	)
	var (
		openMap  = tablefsm.TransitionMap{stOpen, tablefsm.EventIgnored, tablefsm.EventIgnored}
		closeMap = tablefsm.TransitionMap{tablefsm.EventIgnored, stClosed, tablefsm.EventIgnored}
		lockMap  = tablefsm.TransitionMap{stLocked, tablefsm.CannotHappen, tablefsm.EventIgnored}
	)

	door := tablefsm.MustNew(numStates,
		tablefsm.WithName("door"),
		tablefsm.WithStateMap(
			tablefsm.StateAction(func(tablefsm.NoEventData) { fmt.Println("closed") }),
			tablefsm.StateAction(func(tablefsm.NoEventData) { fmt.Println("open") }),
			tablefsm.StateAction(func(tablefsm.NoEventData) { fmt.Println("locked") }),
		),
		tablefsm.WithLogger(zerolog.Nop()),
	)

	door.Transition(openMap, nil)
	door.Transition(openMap, nil) // ignored
	door.Transition(closeMap, nil)
	door.Transition(lockMap, nil)
	door.Transition(openMap, nil) // ignored while locked

	fmt.Println("state:", door.CurrentState())

	// Output:
	// open
	// closed
	// locked
	// state: 2
}

// Example: guards, entry and exit actions and a typed payload
func Example_heater() {
	type tempData struct {
		Celsius int
	}

	const (
		stOff tablefsm.StateID = iota
		stHeating
		numStates
	)

	heater := tablefsm.MustNew(numStates,
		tablefsm.WithStateMapEx(
			tablefsm.Row(
				tablefsm.StateAction(func(*tempData) { fmt.Println("off") }),
				tablefsm.WithExit(tablefsm.ExitAction(func() { fmt.Println("exit off") })),
			),
			tablefsm.Row(
				tablefsm.StateAction(func(d *tempData) { fmt.Println("heating at", d.Celsius) }),
				tablefsm.WithGuard(tablefsm.GuardCondition(func(d *tempData) bool { return d.Celsius < 20 })),
				tablefsm.WithEntry(tablefsm.EntryAction(func(*tempData) { fmt.Println("entry heating") })),
			),
		),
		tablefsm.WithLogger(zerolog.Nop()),
	)

	heater.ExternalEvent(stHeating, &tempData{Celsius: 25}) // guard rejects
	heater.ExternalEvent(stHeating, &tempData{Celsius: 15})

	// Output:
	// exit off
	// entry heating
	// heating at 15
}

// Example: an impossible event halts the machine with a fault
func Example_fault() {
	m := tablefsm.MustNew(1,
		tablefsm.WithName("pump"),
		tablefsm.WithStateMap(tablefsm.StateAction(func(tablefsm.NoEventData) {})),
		tablefsm.WithFaultHandler(func(f *tablefsm.Fault) {
			fmt.Println("fault:", f.Kind, "in", f.Machine)
		}),
		tablefsm.WithLogger(zerolog.Nop()),
	)

	defer func() {
		var f *tablefsm.Fault
		if err, ok := recover().(error); ok && errors.As(err, &f) {
			fmt.Println("halted in state", f.State)
		}
	}()
	m.ExternalEvent(tablefsm.CannotHappen, nil)

	// Output:
	// fault: cannot_happen in pump
	// halted in state 0
}
