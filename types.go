// Package tablefsm is a table-driven state machine engine for control-style
// software. A machine owns a fixed set of states, one action per state and,
// optionally, a guard, entry and exit action per state. Each external event
// method of a machine resolves its target through a per-event lookup indexed
// by the current state and hands the result to ExternalEvent, which runs the
// state actions to completion before returning.
package tablefsm

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/librescoot/tablefsm/internal/log"
)

// StateID is the index of a state within a machine. Valid states are
// contiguous from zero up to the machine's state count.
type StateID uint8

// Sentinel lookup values. They are never valid state indices.
const (
	// EventIgnored discards the event without changing state.
	EventIgnored StateID = 0xFE
	// CannotHappen marks an event that must never arrive in a state.
	CannotHappen StateID = 0xFF
)

func (s StateID) String() string {
	switch s {
	case EventIgnored:
		return "EVENT_IGNORED"
	case CannotHappen:
		return "CANNOT_HAPPEN"
	default:
		return fmt.Sprintf("%d", uint8(s))
	}
}

// Ownership selects who releases the payload handed to ExternalEvent.
type Ownership int

const (
	// EngineOwned transfers every payload to the engine, which releases it
	// once the dispatch step that consumed it is complete.
	EngineOwned Ownership = iota
	// CallerOwned leaves external payloads with the caller; their lifetime is
	// bounded by the ExternalEvent call. Payloads passed to InternalEvent are
	// always engine owned.
	CallerOwned
)

func (o Ownership) String() string {
	switch o {
	case EngineOwned:
		return "engine"
	case CallerOwned:
		return "caller"
	default:
		return fmt.Sprintf("Ownership(%d)", int(o))
	}
}

// LogConfig configures the default logger.
type LogConfig struct {
	Level   string    // "debug", "info", ...; defaults to LOG_LEVEL, then info
	Output  io.Writer // defaults to os.Stderr
	Service string    // defaults to LOG_SERVICE, then "tablefsm"
}

// ConfigureLogging sets up the default logger of machines built without
// WithLogger. Only the first call takes effect, and only if it comes before
// the first such machine is built; it reports whether it took effect.
func ConfigureLogging(cfg LogConfig) bool {
	return log.Configure(log.Config{Level: cfg.Level, Output: cfg.Output, Service: cfg.Service})
}

// DefaultLogger returns the logger used when none is provided.
func DefaultLogger() zerolog.Logger {
	return log.WithComponent("tablefsm")
}
