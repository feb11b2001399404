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

package queue

import (
	"container/list"
	"sync"

	"github.com/nabbar/tor-control/errs"
	"github.com/nabbar/tor-control/logging"
	"github.com/nabbar/tor-control/reply"
)

// Queue serializes command writes and matches synchronous reply-groups to
// the command at its head, in FIFO order. A Queue is owned by exactly one
// session; the reader task and the writer task are its only callers.
type Queue struct {
	mu     sync.Mutex
	items  *list.List
	log    logging.Logger
	notify chan struct{}
}

// New returns an empty Queue.
func New(log logging.Logger) *Queue {
	if log == nil {
		log = logging.Nop
	}
	return &Queue{items: list.New(), log: log, notify: make(chan struct{}, 1)}
}

// Notify returns a channel the writer task can select on: it receives a
// value whenever the head of the queue may have become writable (a new
// command was enqueued, or the previous head was matched and removed).
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}

func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Enqueue appends a Command and returns its Handle immediately.
func (q *Queue) Enqueue(cmd Command) Handle {
	pc := newPendingCommand(cmd)

	q.mu.Lock()
	q.items.PushBack(pc)
	q.mu.Unlock()

	q.wake()
	return pc
}

// NextWrite returns the wire bytes for the next Queued command and
// transitions it to Writing, or ok=false if the head is not ready (empty
// queue, or head already cancelled and skipped over). The writer task
// calls this in a loop.
func (q *Queue) NextWrite() (payload []byte, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.items.Front()
	for e != nil {
		pc := e.Value.(*pendingCommand)

		pc.mu.Lock()
		state := pc.state
		if state == StateCompleted || state == StateCancelled {
			pc.mu.Unlock()
			// Already resolved (cancelled while still Queued); drop it
			// from the queue and keep scanning for real work.
			next := e.Next()
			q.items.Remove(e)
			e = next
			continue
		}
		if state != StateQueued {
			pc.mu.Unlock()
			// Head is already Writing/AwaitingReply: nothing new to write.
			return nil, false
		}
		pc.state = StateWriting
		cmd := pc.cmd
		pc.mu.Unlock()

		return cmd.Encode(), true
	}

	return nil, false
}

// WriteDone transitions the queue head from Writing to AwaitingReply once
// its bytes have been fully written to the transport.
func (q *Queue) WriteDone() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e := q.items.Front(); e != nil {
		pc := e.Value.(*pendingCommand)
		pc.mu.Lock()
		if pc.state == StateWriting {
			pc.state = StateAwaitingReply
		}
		pc.mu.Unlock()
	}
}

// MatchReply resolves the queue head with a synchronous ReplyGroup arriving
// from the Reply Parser. Status 2xx resolves success; 4xx/5xx resolves
// CommandFailed. It is a ProtocolError for a sync group to arrive while the
// head was never written (Queued) or the queue is empty.
func (q *Queue) MatchReply(group *reply.ReplyGroup) error {
	q.mu.Lock()
	e := q.items.Front()
	if e == nil {
		q.mu.Unlock()
		return errs.New(errs.ProtocolError, "synchronous reply with no outstanding command")
	}

	pc := e.Value.(*pendingCommand)
	pc.mu.Lock()
	state := pc.state
	pc.mu.Unlock()

	if state == StateQueued {
		q.mu.Unlock()
		return errs.New(errs.ProtocolError, "synchronous reply while queue head was never written")
	}

	q.items.Remove(e)
	q.mu.Unlock()
	q.wake()

	if len(group.Replies) == 0 {
		pc.resolve(StateCompleted, group, errs.New(errs.ProtocolError, "empty synchronous reply group"))
		return nil
	}

	status := group.Replies[0].Status
	switch {
	case status/100 == 2:
		pc.resolve(StateCompleted, group, nil)
	case status/100 == 4 || status/100 == 5:
		pc.resolve(StateCompleted, nil, errs.WithStatus(errs.CommandFailed, status, group.Replies[0].Message))
	default:
		return errs.New(errs.ProtocolError, "unexpected status in synchronous reply")
	}
	return nil
}

// InterruptAll completes every still-pending command with Interrupted, in
// FIFO order, and empties the queue. Called once on session destruction.
func (q *Queue) InterruptAll(cause error) {
	q.mu.Lock()
	items := make([]*pendingCommand, 0, q.items.Len())
	for e := q.items.Front(); e != nil; e = e.Next() {
		items = append(items, e.Value.(*pendingCommand))
	}
	q.items.Init()
	q.mu.Unlock()

	for _, pc := range items {
		pc.resolve(StateCompleted, nil, errs.WithCause(errs.Interrupted, cause))
	}
}

// Len reports the number of entries still tracked by the queue
// (Queued/Writing/AwaitingReply). Used for diagnostics and tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}
