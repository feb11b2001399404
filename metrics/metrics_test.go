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

package metrics_test

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/tor-control/metrics"
	"github.com/nabbar/tor-control/reply"
	"github.com/nabbar/tor-control/session"
)

func gaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	Expect(g.Write(m)).To(Succeed())
	return m.GetGauge().GetValue()
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	Expect(c.Write(m)).To(Succeed())
	return m.GetCounter().GetValue()
}

var _ = Describe("Collector", func() {
	It("tracks commands in flight and total", func() {
		reg := prometheus.NewRegistry()
		c := metrics.New(reg)

		c.CommandEnqueued()
		c.CommandEnqueued()
		c.CommandCompleted()

		mf, err := reg.Gather()
		Expect(err).ToNot(HaveOccurred())
		Expect(mf).ToNot(BeEmpty())
	})

	It("records session state transitions", func() {
		reg := prometheus.NewRegistry()
		c := metrics.New(reg)

		c.SessionState(session.StateReady)

		var asMetrics session.Metrics = c
		Expect(asMetrics).ToNot(BeNil())
	})

	It("labels dispatched events by kind", func() {
		reg := prometheus.NewRegistry()
		c := metrics.New(reg)

		c.EventDispatched(reply.EventBW)
		c.EventDispatched(reply.EventBW)
		c.EventDispatched(reply.EventCirc)

		mf, err := reg.Gather()
		Expect(err).ToNot(HaveOccurred())
		Expect(mf).ToNot(BeEmpty())
	})

	It("labels SETEVENTS reconciliation outcomes", func() {
		reg := prometheus.NewRegistry()
		c := metrics.New(reg)

		c.SetEventsReconciled(true)
		c.SetEventsReconciled(false)

		mf, err := reg.Gather()
		Expect(err).ToNot(HaveOccurred())
		Expect(mf).ToNot(BeEmpty())
	})
})
