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

package events_test

import (
	"context"
	"sort"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/tor-control/events"
	"github.com/nabbar/tor-control/queue"
	"github.com/nabbar/tor-control/reply"
)

type sendRecorder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (s *sendRecorder) send(_ context.Context, cmd queue.Command) (*reply.ReplyGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	args := append([]string(nil), cmd.Args...)
	sort.Strings(args)
	s.calls = append(s.calls, args)
	if s.err != nil {
		return nil, s.err
	}
	return &reply.ReplyGroup{Sync: true, Replies: []reply.Reply{{Status: 250, Message: "OK"}}}, nil
}

func (s *sendRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *sendRecorder) last() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

func asyncEvent(kind reply.EventKind, msg string) *reply.ReplyGroup {
	return &reply.ReplyGroup{
		Sync:      false,
		EventKind: kind,
		Replies:   []reply.Reply{{Status: 650, Message: string(kind) + " " + msg}},
	}
}

var _ = Describe("Router", func() {
	var rec *sendRecorder
	var r *events.Router

	BeforeEach(func() {
		rec = &sendRecorder{}
		r = events.New(nil, rec.send, 5*time.Millisecond)
	})

	It("delivers an event to every subscriber of that kind exactly once", func() {
		var mu sync.Mutex
		var got []string

		for i := 0; i < 3; i++ {
			r.Add(reply.EventCirc, "", func(payload string) {
				mu.Lock()
				got = append(got, payload)
				mu.Unlock()
			})
		}

		r.Dispatch(asyncEvent(reply.EventCirc, "LAUNCHED"))

		mu.Lock()
		defer mu.Unlock()
		Expect(got).To(HaveLen(3))
		for _, p := range got {
			Expect(p).To(Equal("LAUNCHED"))
		}
	})

	It("drops events with no matching subscriber silently", func() {
		called := false
		r.Add(reply.EventCirc, "", func(string) { called = true })
		r.Dispatch(asyncEvent(reply.EventBW, "1 2"))
		Expect(called).To(BeFalse())
	})

	It("ignores synchronous reply groups", func() {
		called := false
		r.Add(reply.EventCirc, "", func(string) { called = true })
		r.Dispatch(&reply.ReplyGroup{Sync: true, EventKind: reply.EventCirc, Replies: []reply.Reply{{Status: 250, Message: "OK"}}})
		Expect(called).To(BeFalse())
	})

	It("recovers from a panicking subscriber without affecting others", func() {
		secondCalled := false
		r.Add(reply.EventCirc, "", func(string) { panic("boom") })
		r.Add(reply.EventCirc, "", func(string) { secondCalled = true })

		Expect(func() { r.Dispatch(asyncEvent(reply.EventCirc, "LAUNCHED")) }).ToNot(Panic())
		Expect(secondCalled).To(BeTrue())
	})

	It("sends at most one SETEVENTS for an add immediately followed by a remove of the same kind", func() {
		sub := r.Add(reply.EventCirc, "", func(string) {})
		r.Remove(sub)

		Consistently(rec.count, "30ms", "5ms").Should(BeNumerically("<=", 1))
	})

	It("reconciles to the union of all subscribed kinds", func() {
		r.Add(reply.EventCirc, "", func(string) {})
		r.Add(reply.EventBW, "", func(string) {})

		Eventually(rec.count, "200ms", "5ms").Should(BeNumerically(">=", 1))
		Eventually(rec.last, "200ms", "5ms").Should(Equal([]string{string(reply.EventBW), string(reply.EventCirc)}))
	})

	It("removes a kind from SETEVENTS once its last subscriber is gone", func() {
		sub := r.Add(reply.EventCirc, "", func(string) {})
		Eventually(rec.count, "200ms", "5ms").Should(BeNumerically(">=", 1))

		r.Remove(sub)
		Eventually(rec.last, "200ms", "5ms").Should(BeEmpty())
	})

	It("removes by tag", func() {
		r.Add(reply.EventCirc, "grouped", func(string) {})
		r.Add(reply.EventBW, "grouped", func(string) {})
		r.Add(reply.EventStream, "other", func(string) {})

		r.RemoveByTag("grouped")
		Eventually(rec.last, "200ms", "5ms").Should(Equal([]string{string(reply.EventStream)}))
	})

	It("removes by event kind", func() {
		r.Add(reply.EventCirc, "", func(string) {})
		r.Add(reply.EventCirc, "", func(string) {})
		r.Add(reply.EventBW, "", func(string) {})

		r.RemoveByEvent(reply.EventCirc)
		Eventually(rec.last, "200ms", "5ms").Should(Equal([]string{string(reply.EventBW)}))
	})

	It("clears every subscription", func() {
		r.Add(reply.EventCirc, "", func(string) {})
		r.Clear()
		Eventually(rec.last, "200ms", "5ms").Should(BeEmpty())
	})

	It("retries once on send failure before giving up", func() {
		rec.err = context.DeadlineExceeded
		r.Add(reply.EventCirc, "", func(string) {})

		Eventually(rec.count, "200ms", "5ms").Should(Equal(2))
		Eventually(r.LastError, "200ms", "5ms").ShouldNot(BeNil())
	})

	It("shuts down without sending a final SETEVENTS", func() {
		r.Add(reply.EventCirc, "", func(string) {})
		Eventually(rec.count, "200ms", "5ms").Should(BeNumerically(">=", 1))

		before := rec.count()
		r.Shutdown()
		Consistently(rec.count, "30ms", "5ms").Should(Equal(before))
		Expect(r.ActiveKinds()).To(BeEmpty())
	})

	It("notifies every subscriber's close hook on shutdown", func() {
		sub1 := r.Add(reply.EventCirc, "", func(string) {})
		sub2 := r.Add(reply.EventBW, "", func(string) {})

		var mu sync.Mutex
		closed := map[string]bool{}
		sub1.OnClose(func() { mu.Lock(); closed[sub1.ID()] = true; mu.Unlock() })
		sub2.OnClose(func() { mu.Lock(); closed[sub2.ID()] = true; mu.Unlock() })

		r.Shutdown()

		mu.Lock()
		defer mu.Unlock()
		Expect(closed).To(HaveLen(2))
		Expect(closed[sub1.ID()]).To(BeTrue())
		Expect(closed[sub2.ID()]).To(BeTrue())
	})

	It("runs an OnClose hook immediately when registered after shutdown", func() {
		sub := r.Add(reply.EventCirc, "", func(string) {})
		r.Shutdown()

		called := false
		sub.OnClose(func() { called = true })
		Expect(called).To(BeTrue())
	})
})
