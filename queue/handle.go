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
	"context"
	"sync"
	"time"

	"github.com/nabbar/tor-control/errs"
	"github.com/nabbar/tor-control/reply"
)

// State is a PendingCommand's position in its lifecycle.
type State int

const (
	StateQueued State = iota
	StateWriting
	StateAwaitingReply
	StateCompleted
	StateCancelled
)

// Handle is the caller-facing view of an enqueued Command.
type Handle interface {
	// AwaitResult blocks until the command reaches a terminal state or ctx
	// is done, whichever comes first.
	AwaitResult(ctx context.Context) (*reply.ReplyGroup, error)

	// Cancel marks the handle cancelled. Idempotent; safe at any state.
	Cancel(cause error)

	// IsActive reports whether the handle has not yet reached a terminal
	// state.
	IsActive() bool

	// State reports the current lifecycle position.
	State() State

	// OnDestroy registers hook to run when the handle reaches a terminal
	// state. A handle already terminal runs hook immediately.
	OnDestroy(hook func())
}

type pendingCommand struct {
	mu sync.Mutex

	cmd   Command
	state State

	group *reply.ReplyGroup
	err   error

	done  chan struct{}
	hooks []func()
}

func newPendingCommand(cmd Command) *pendingCommand {
	return &pendingCommand{
		cmd:   cmd,
		state: StateQueued,
		done:  make(chan struct{}),
	}
}

// resolve transitions the command to a terminal state exactly once; later
// calls are no-ops so a cancelled-then-replied race never double-resolves.
func (p *pendingCommand) resolve(state State, group *reply.ReplyGroup, err error) {
	p.mu.Lock()
	if p.state == StateCompleted || p.state == StateCancelled {
		p.mu.Unlock()
		return
	}
	p.state = state
	p.group = group
	p.err = err
	hooks := p.hooks
	p.hooks = nil
	p.mu.Unlock()

	close(p.done)
	for _, h := range hooks {
		h()
	}
}

func (p *pendingCommand) AwaitResult(ctx context.Context) (*reply.ReplyGroup, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.group, p.err
	case <-ctx.Done():
		return nil, errs.Wrap(errs.Cancelled, ctx.Err())
	}
}

// Cancel marks the handle cancelled regardless of its current state. For a
// Queued command no bytes were ever sent. For Writing/AwaitingReply the
// command still completes on the wire; MatchReply's own resolve call is a
// no-op once this one has already made the handle terminal.
func (p *pendingCommand) Cancel(cause error) {
	p.resolve(StateCancelled, nil, errs.WithCause(errs.Cancelled, cause))
}

func (p *pendingCommand) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != StateCompleted && p.state != StateCancelled
}

func (p *pendingCommand) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *pendingCommand) OnDestroy(hook func()) {
	p.mu.Lock()
	terminal := p.state == StateCompleted || p.state == StateCancelled
	if !terminal {
		p.hooks = append(p.hooks, hook)
	}
	p.mu.Unlock()

	if terminal {
		hook()
	}
}

// AwaitBlocking is the synchronous blocking-await helper: it polls the
// handle roughly every 10ms, invoking probe (if non-nil) between polls, and
// translates a non-nil cause from probe into Cancel. It must only be called
// from a background execution context, never from the reader/writer tasks.
func AwaitBlocking(h Handle, probe func() error) (*reply.ReplyGroup, error) {
	const pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !h.IsActive() {
		return h.AwaitResult(ctx)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	go func() {
		_, _ = h.AwaitResult(context.Background())
		close(done)
	}()

	for {
		select {
		case <-done:
			return h.AwaitResult(ctx)
		case <-ticker.C:
			if probe == nil {
				continue
			}
			if cause := probe(); cause != nil {
				h.Cancel(cause)
			}
		}
	}
}
