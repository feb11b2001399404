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

// Package events owns the set of current event subscribers, routes
// asynchronous ReplyGroups to them, and keeps Tor's server-side event set
// (via SETEVENTS) synchronized with that set.
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nabbar/tor-control/reply"
)

// Subscription is an (EventKind, tag?, delivery-callback) triple the Router
// dispatches matching events to.
type Subscription struct {
	id       string
	kind     reply.EventKind
	tag      string
	callback func(payload string)

	mu         sync.Mutex
	closed     bool
	closeHooks []func()
}

// ID uniquely identifies a Subscription for Remove.
func (s *Subscription) ID() string { return s.id }

func newSubscription(kind reply.EventKind, tag string, cb func(string)) *Subscription {
	return &Subscription{id: uuid.NewString(), kind: kind, tag: tag, callback: cb}
}

// OnClose registers hook to run once the Subscription is torn down by
// Router.Shutdown — the subscriber-side half of the session's final
// "session destroyed" signal. A Subscription already closed runs hook
// immediately, mirroring queue.Handle.OnDestroy and Session.OnDestroy.
func (s *Subscription) OnClose(hook func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		hook()
		return
	}
	s.closeHooks = append(s.closeHooks, hook)
	s.mu.Unlock()
}

// notifyClosed fires every registered close hook exactly once.
func (s *Subscription) notifyClosed() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	hooks := s.closeHooks
	s.closeHooks = nil
	s.mu.Unlock()

	for _, h := range hooks {
		h()
	}
}
