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

package events

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/nabbar/tor-control/errs"
	"github.com/nabbar/tor-control/logging"
	"github.com/nabbar/tor-control/queue"
	"github.com/nabbar/tor-control/reply"
	"github.com/nabbar/tor-control/syncmap"
)

// SendFunc submits a SETEVENTS reconciliation command and blocks for its
// result. The Session Controller supplies this, backed by its own Command
// Queue, so the Router never touches the transport directly.
type SendFunc func(ctx context.Context, cmd queue.Command) (*reply.ReplyGroup, error)

// Router owns the current subscriber set and the SETEVENTS reconciliation
// state machine described in the session's event-dispatch design.
type Router struct {
	mu   sync.Mutex
	subs syncmap.Map[string, *Subscription]

	active map[reply.EventKind]bool

	log   logging.Logger
	send  SendFunc
	delay time.Duration
	timer *time.Timer
	dirty bool

	lastErr error
}

// New returns an empty Router. delay is the debounce window collapsing
// rapid add/remove bursts into a single SETEVENTS command; 20ms is a
// reasonable default for interactive subscription churn.
func New(log logging.Logger, send SendFunc, delay time.Duration) *Router {
	if log == nil {
		log = logging.Nop
	}
	if delay <= 0 {
		delay = 20 * time.Millisecond
	}
	return &Router{
		active: make(map[reply.EventKind]bool),
		log:    log,
		send:   send,
		delay:  delay,
	}
}

// Add inserts a Subscription and schedules a reconciliation, which sends
// SETEVENTS only if the set of subscribed kinds has changed.
func (r *Router) Add(kind reply.EventKind, tag string, cb func(payload string)) *Subscription {
	sub := newSubscription(kind, tag, cb)

	r.subs.Store(sub.id, sub)

	r.mu.Lock()
	r.scheduleReconcileLocked()
	r.mu.Unlock()

	return sub
}

// Remove drops one Subscription by identity.
func (r *Router) Remove(sub *Subscription) {
	if sub == nil {
		return
	}
	r.subs.Delete(sub.id)

	r.mu.Lock()
	r.scheduleReconcileLocked()
	r.mu.Unlock()
}

// RemoveByTag drops every Subscription carrying the given tag.
func (r *Router) RemoveByTag(tag string) {
	r.subs.Range(func(id string, s *Subscription) bool {
		if s.tag == tag {
			r.subs.Delete(id)
		}
		return true
	})

	r.mu.Lock()
	r.scheduleReconcileLocked()
	r.mu.Unlock()
}

// RemoveByEvent drops every Subscription for the given EventKind.
func (r *Router) RemoveByEvent(kind reply.EventKind) {
	r.subs.Range(func(id string, s *Subscription) bool {
		if s.kind == kind {
			r.subs.Delete(id)
		}
		return true
	})

	r.mu.Lock()
	r.scheduleReconcileLocked()
	r.mu.Unlock()
}

// Clear drops every Subscription.
func (r *Router) Clear() {
	for _, id := range r.subs.Keys() {
		r.subs.Delete(id)
	}

	r.mu.Lock()
	r.scheduleReconcileLocked()
	r.mu.Unlock()
}

// Shutdown cancels any pending reconciliation and clears the active set
// without sending a final SETEVENTS, per the session's best-effort destroy
// policy. Every subscriber receives its final "session destroyed" signal
// (via Subscription.notifyClosed) before being dropped from the set.
func (r *Router) Shutdown() {
	for _, id := range r.subs.Keys() {
		if sub, ok := r.subs.LoadAndDelete(id); ok {
			sub.notifyClosed()
		}
	}

	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.dirty = false
	r.active = make(map[reply.EventKind]bool)
	r.mu.Unlock()
}

// Dispatch routes one asynchronous ReplyGroup to every matching subscriber;
// the order among subscribers of the same kind is not defined. Events with
// no matching subscriber are dropped silently.
// A subscriber's panic is caught and logged; it never aborts dispatch for
// the remaining subscribers.
func (r *Router) Dispatch(group *reply.ReplyGroup) {
	if group.Sync {
		return
	}

	matched := make([]*Subscription, 0)
	r.subs.Range(func(_ string, s *Subscription) bool {
		if s.kind == group.EventKind {
			matched = append(matched, s)
		}
		return true
	})

	if len(matched) == 0 {
		return
	}

	payload := group.EventPayload()
	for _, s := range matched {
		r.invoke(s, payload)
	}
}

func (r *Router) invoke(s *Subscription, payload string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("event subscriber panicked", logging.F("kind", string(s.kind)), logging.F("recover", rec))
		}
	}()
	s.callback(payload)
}

// scheduleReconcileLocked must be called with mu held.
func (r *Router) scheduleReconcileLocked() {
	r.dirty = true
	if r.timer != nil {
		r.timer.Reset(r.delay)
		return
	}
	r.timer = time.AfterFunc(r.delay, r.reconcile)
}

// desiredSetLocked reads the subscriber set (itself independently
// synchronized) while mu is held only for the active/timer/dirty fields it
// shares with scheduleReconcileLocked's callers.
func (r *Router) desiredSetLocked() map[reply.EventKind]bool {
	desired := make(map[reply.EventKind]bool)
	r.subs.Range(func(_ string, s *Subscription) bool {
		desired[s.kind] = true
		return true
	})
	return desired
}

func sameSet(a, b map[reply.EventKind]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// reconcile runs on the debounce timer. It computes the union of subscribed
// kinds and, if it differs from the active set, sends SETEVENTS. On
// failure it retries once; a second failure is recorded as the Router's
// last error and logged, leaving the active set unchanged so the next
// subscription change retries reconciliation from scratch.
func (r *Router) reconcile() {
	r.mu.Lock()
	if !r.dirty {
		r.mu.Unlock()
		return
	}
	r.dirty = false
	r.timer = nil
	desired := r.desiredSetLocked()
	active := r.active
	send := r.send
	r.mu.Unlock()

	if sameSet(desired, active) {
		return
	}

	kinds := make([]string, 0, len(desired))
	for k := range desired {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	if send == nil {
		return
	}

	cmd := queue.Command{Verb: "SETEVENTS", Args: kinds}

	var merr *multierror.Error
	ok := false
	for attempt := 0; attempt < 2; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := send(ctx, cmd)
		cancel()
		if err == nil {
			ok = true
			break
		}
		merr = multierror.Append(merr, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.active = desired
		r.lastErr = nil
	} else {
		r.lastErr = errs.Wrap(errs.ProtocolError, merr.ErrorOrNil())
		r.log.Error("SETEVENTS reconciliation failed", logging.F("error", r.lastErr))
	}
}

// LastError reports the most recent reconciliation failure, if any.
func (r *Router) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// ActiveKinds reports the event kinds currently believed active on the
// wire, for diagnostics and tests.
func (r *Router) ActiveKinds() []reply.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]reply.EventKind, 0, len(r.active))
	for k := range r.active {
		kinds = append(kinds, k)
	}
	return kinds
}
