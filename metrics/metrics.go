/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics supplies an optional prometheus-backed implementation of
// session.Metrics: counters and gauges a Session reports traffic and
// lifecycle transitions to, following the corpus's convention of a small
// collectors struct constructed once and handed to the component it
// instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/tor-control/reply"
	"github.com/nabbar/tor-control/session"
)

// Collector implements session.Metrics over a set of prometheus
// collectors registered under namespace "torctl".
type Collector struct {
	commandsInFlight prometheus.Gauge
	commandsTotal    prometheus.Counter
	eventsDispatched *prometheus.CounterVec
	setEventsTotal   *prometheus.CounterVec
	sessionState     prometheus.Gauge
}

// New builds a Collector and registers its collectors on reg. A nil reg
// registers against prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		commandsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "torctl",
			Subsystem: "queue",
			Name:      "commands_in_flight",
			Help:      "Number of commands enqueued but not yet completed.",
		}),
		commandsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "torctl",
			Subsystem: "queue",
			Name:      "commands_total",
			Help:      "Total number of commands enqueued.",
		}),
		eventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "torctl",
			Subsystem: "events",
			Name:      "dispatched_total",
			Help:      "Total number of asynchronous events dispatched, by kind.",
		}, []string{"kind"}),
		setEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "torctl",
			Subsystem: "events",
			Name:      "setevents_reconciliations_total",
			Help:      "Total number of SETEVENTS reconciliations, by outcome.",
		}, []string{"outcome"}),
		sessionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "torctl",
			Subsystem: "session",
			Name:      "state",
			Help:      "Current session lifecycle state, as its ordinal position (0=Connecting .. 4=Destroyed).",
		}),
	}

	reg.MustRegister(
		c.commandsInFlight,
		c.commandsTotal,
		c.eventsDispatched,
		c.setEventsTotal,
		c.sessionState,
	)

	return c
}

// CommandEnqueued records a command reaching the queue.
func (c *Collector) CommandEnqueued() {
	c.commandsTotal.Inc()
	c.commandsInFlight.Inc()
}

// CommandCompleted records a command leaving the queue in any terminal
// state (completed or cancelled).
func (c *Collector) CommandCompleted() {
	c.commandsInFlight.Dec()
}

// EventDispatched records one asynchronous ReplyGroup being routed to the
// Event Router, labelled by EventKind.
func (c *Collector) EventDispatched(kind reply.EventKind) {
	c.eventsDispatched.WithLabelValues(string(kind)).Inc()
}

// SetEventsReconciled records the outcome of one SETEVENTS reconciliation
// attempt.
func (c *Collector) SetEventsReconciled(ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	c.setEventsTotal.WithLabelValues(outcome).Inc()
}

// SessionState records the session's current lifecycle position as a
// gauge, so a dashboard can chart state transitions over time.
func (c *Collector) SessionState(s session.State) {
	c.sessionState.Set(float64(s))
}

var _ session.Metrics = (*Collector)(nil)
