// Package fsmtrace records tablefsm dispatches as OpenTelemetry spans. Each
// external event becomes one span; state changes and guard rejections are
// span events on it.
package fsmtrace

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/librescoot/tablefsm"
)

const instrumentationName = "github.com/librescoot/tablefsm/fsmtrace"

// Span names
const (
	SpanDispatch = "tablefsm.dispatch"
	SpanIgnored  = "tablefsm.ignored"
)

// Attribute keys
const (
	MachineKey   = "fsm.machine"
	MachineIDKey = "fsm.machine_id"
	StateKey     = "fsm.state"
	FromKey      = "fsm.from"
	ToKey        = "fsm.to"
	TargetKey    = "fsm.target"
	StepsKey     = "fsm.steps"
	FaultKey     = "fsm.fault"
)

// Tracer is a tablefsm.Observer that emits spans. One Tracer may observe
// many machines.
type Tracer struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[*tablefsm.Machine]trace.Span
}

var _ tablefsm.Observer = (*Tracer)(nil)

// New creates a Tracer using tp. A nil tp uses the global provider.
func New(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer: tp.Tracer(instrumentationName),
		spans:  make(map[*tablefsm.Machine]trace.Span),
	}
}

func machineAttributes(m *tablefsm.Machine) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(MachineKey, m.Name()),
		attribute.String(MachineIDKey, m.ID()),
		attribute.String(StateKey, m.StateName(m.CurrentState())),
	}
}

func (t *Tracer) span(m *tablefsm.Machine) trace.Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.spans[m]; ok {
		return s
	}
	return trace.SpanFromContext(context.Background())
}

func (t *Tracer) DispatchStarted(m *tablefsm.Machine, target tablefsm.StateID) {
	attrs := append(machineAttributes(m), attribute.String(TargetKey, m.StateName(target)))
	_, s := t.tracer.Start(context.Background(), SpanDispatch, trace.WithAttributes(attrs...))

	t.mu.Lock()
	t.spans[m] = s
	t.mu.Unlock()
}

func (t *Tracer) StateChanged(m *tablefsm.Machine, from, to tablefsm.StateID) {
	t.span(m).AddEvent("state_changed", trace.WithAttributes(
		attribute.String(FromKey, m.StateName(from)),
		attribute.String(ToKey, m.StateName(to)),
	))
}

func (t *Tracer) GuardRejected(m *tablefsm.Machine, target tablefsm.StateID) {
	t.span(m).AddEvent("guard_rejected", trace.WithAttributes(
		attribute.String(StateKey, m.StateName(m.CurrentState())),
		attribute.String(TargetKey, m.StateName(target)),
	))
}

func (t *Tracer) EventIgnored(m *tablefsm.Machine) {
	_, s := t.tracer.Start(context.Background(), SpanIgnored, trace.WithAttributes(machineAttributes(m)...))
	s.End()
}

func (t *Tracer) DispatchFinished(m *tablefsm.Machine, steps int) {
	t.mu.Lock()
	s, ok := t.spans[m]
	delete(t.spans, m)
	t.mu.Unlock()
	if !ok {
		return
	}

	s.SetAttributes(
		attribute.Int(StepsKey, steps),
		attribute.String(StateKey, m.StateName(m.CurrentState())),
	)
	s.End()
}

// FaultHandler returns a fault handler that ends the open dispatch span of
// the faulting machine instance with an error status before calling next.
func (t *Tracer) FaultHandler(next tablefsm.FaultHandler) tablefsm.FaultHandler {
	return func(f *tablefsm.Fault) {
		t.mu.Lock()
		for m, s := range t.spans {
			if m.ID() != f.MachineID {
				continue
			}
			s.RecordError(f)
			s.SetStatus(codes.Error, f.Kind.String())
			s.SetAttributes(attribute.String(FaultKey, f.Kind.String()))
			s.End()
			delete(t.spans, m)
		}
		t.mu.Unlock()

		if next != nil {
			next(f)
		}
	}
}
