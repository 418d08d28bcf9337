// Package fsmmetrics exports dispatch activity of tablefsm machines as
// Prometheus metrics. Attach a Collector to any number of machines with
// tablefsm.WithObserver.
package fsmmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/librescoot/tablefsm"
)

const namespace = "tablefsm"

// Collector is a tablefsm.Observer that records metrics. Labels carry the
// machine and state names, never instance IDs.
type Collector struct {
	transitions   *prometheus.CounterVec
	ignored       *prometheus.CounterVec
	guardRejects  *prometheus.CounterVec
	dispatches    *prometheus.CounterVec
	dispatchSteps *prometheus.HistogramVec
}

var _ tablefsm.Observer = (*Collector)(nil)

// New registers the collector's metrics with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Total number of executed state actions by source and target state",
		}, []string{"machine", "from", "to"}),
		ignored: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ignored_total",
			Help:      "Total number of external events discarded as ignored",
		}, []string{"machine", "state"}),
		guardRejects: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_rejections_total",
			Help:      "Total number of transitions suppressed by a guard",
		}, []string{"machine", "state", "target"}),
		dispatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total number of external events dispatched",
		}, []string{"machine"}),
		dispatchSteps: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_steps",
			Help:      "Run-to-completion steps taken per external event",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}, []string{"machine"}),
	}
}

func (c *Collector) DispatchStarted(m *tablefsm.Machine, _ tablefsm.StateID) {
	c.dispatches.WithLabelValues(m.Name()).Inc()
}

func (c *Collector) StateChanged(m *tablefsm.Machine, from, to tablefsm.StateID) {
	c.transitions.WithLabelValues(m.Name(), m.StateName(from), m.StateName(to)).Inc()
}

func (c *Collector) GuardRejected(m *tablefsm.Machine, target tablefsm.StateID) {
	c.guardRejects.WithLabelValues(m.Name(), m.StateName(m.CurrentState()), m.StateName(target)).Inc()
}

func (c *Collector) EventIgnored(m *tablefsm.Machine) {
	c.ignored.WithLabelValues(m.Name(), m.StateName(m.CurrentState())).Inc()
}

func (c *Collector) DispatchFinished(m *tablefsm.Machine, steps int) {
	c.dispatchSteps.WithLabelValues(m.Name()).Observe(float64(steps))
}
