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

// Package session is the top-level lifecycle controller: it dials a
// Transport, authenticates, and owns the reader/writer tasks that drive
// the Command Queue and Event Router for the life of one connection to a
// Tor control listener.
package session

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nabbar/tor-control/errs"
	"github.com/nabbar/tor-control/events"
	"github.com/nabbar/tor-control/framer"
	"github.com/nabbar/tor-control/logging"
	"github.com/nabbar/tor-control/queue"
	"github.com/nabbar/tor-control/reply"
	"github.com/nabbar/tor-control/transport"
)

// writerIdleInterval bounds how long the writer task can sleep without a
// Notify wakeup before re-checking the queue head; it is a backstop, not
// the primary wakeup path.
const writerIdleInterval = 50 * time.Millisecond

// Metrics is the optional collaborator a Session reports lifecycle and
// traffic counters to. A nil Metrics disables reporting entirely.
type Metrics interface {
	CommandEnqueued()
	CommandCompleted()
	EventDispatched(kind reply.EventKind)
	SetEventsReconciled(ok bool)
	SessionState(s State)
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithLogger attaches a structured logger; the default is a no-op logger.
func WithLogger(log logging.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithMetrics attaches a Metrics collector; the default reports nothing.
func WithMetrics(m Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// Session is the public control-protocol session: it owns the Transport,
// Command Queue, Event Router and Parser exclusively for its lifetime.
type Session struct {
	cfg Config
	log logging.Logger

	metrics Metrics

	state stateBox

	transport transport.Transport
	reader    *framer.Framer
	parser    *reply.Parser
	queue     *queue.Queue
	router    *events.Router

	version string

	cancel context.CancelFunc
	eg     *errgroup.Group

	destroyOnce  sync.Once
	hooksMu      sync.Mutex
	destroyHooks []func()
}

// Connect opens a Transport per cfg, starts the reader/writer tasks, and
// runs the authentication handshake described in spec §4.6. It returns a
// Session in State Ready, or an error; the session is never returned in a
// partially-initialized state.
func Connect(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, log: logging.Nop}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logging.Nop
	}
	s.state.store(StateConnecting)

	dialCtx, dialCancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer dialCancel()

	tr, err := dial(dialCtx, cfg)
	if err != nil {
		return nil, err
	}
	s.transport = tr
	s.reader = framer.New(tr)
	s.parser = reply.NewParser()
	s.queue = queue.New(s.log)
	s.router = events.New(s.log, s.sendEvent, 20*time.Millisecond)

	runCtx, runCancel := context.WithCancel(context.Background())
	s.cancel = runCancel
	eg, egCtx := errgroup.WithContext(runCtx)
	s.eg = eg
	eg.Go(func() error { return s.readerLoop(egCtx) })
	eg.Go(func() error { return s.writerLoop(egCtx) })

	s.state.store(StateAuthenticating)
	s.reportState()

	hsCtx, hsCancel := context.WithTimeout(ctx, cfg.HandshakeTimeout)
	defer hsCancel()

	if err := s.handshake(hsCtx, cfg); err != nil {
		s.destroyWithCause(err)
		return nil, err
	}

	s.state.store(StateReady)
	s.reportState()

	if cfg.TakeOwnership {
		_, _ = s.authCommand(hsCtx, queue.Command{Verb: "TAKEOWNERSHIP"})
	}

	return s, nil
}

func dial(ctx context.Context, cfg Config) (transport.Transport, error) {
	switch cfg.Transport {
	case TransportTCP:
		return transport.DialTCP(ctx, cfg.Address)
	case TransportUnix:
		return transport.DialUnix(ctx, cfg.Address)
	default:
		return nil, errs.New(errs.Unsupported, "unknown transport kind")
	}
}

func (s *Session) handshake(ctx context.Context, cfg Config) error {
	group, err := s.authCommand(ctx, queue.Command{Verb: "PROTOCOLINFO", Args: []string{strconv.Itoa(protocolInfoVersion)}})
	if err != nil {
		return err
	}

	info, err := parseProtocolInfo(group)
	if err != nil {
		return err
	}
	s.version = info.version

	method, err := selectAuthMethod(cfg, info)
	if err != nil {
		return err
	}

	cookiePath := cfg.CookiePath
	if cookiePath == "" {
		cookiePath = info.cookieFile
	}

	switch method {
	case AuthNull:
		return s.authenticateNull(ctx)
	case AuthPassword:
		return s.authenticatePassword(ctx, cfg.Password)
	case AuthCookie:
		return s.authenticateCookie(ctx, cookiePath)
	case AuthSafeCookie:
		return s.authenticateSafeCookie(ctx, cookiePath)
	default:
		return errs.New(errs.AuthFailed, "no usable authentication method")
	}
}

// Version reports the Tor version string PROTOCOLINFO advertised, once
// Connect has succeeded.
func (s *Session) Version() string { return s.version }

// State reports the session's current lifecycle position.
func (s *Session) State() State { return s.state.load() }

// Enqueue submits a Command through the Command Queue. It fails with
// Closed if the session is shutting down or already destroyed.
func (s *Session) Enqueue(cmd queue.Command) (queue.Handle, error) {
	switch s.state.load() {
	case StateShuttingDown, StateDestroyed:
		return nil, errs.New(errs.Closed, "session is no longer accepting commands")
	}
	if s.metrics != nil {
		s.metrics.CommandEnqueued()
	}
	h := s.queue.Enqueue(cmd)
	if s.metrics != nil {
		h.OnDestroy(s.metrics.CommandCompleted)
	}
	return h, nil
}

// Subscribe registers a callback for one EventKind, optionally tagged for
// bulk removal later.
func (s *Session) Subscribe(kind reply.EventKind, tag string, cb func(payload string)) *events.Subscription {
	return s.router.Add(kind, tag, cb)
}

// Unsubscribe removes one Subscription.
func (s *Session) Unsubscribe(sub *events.Subscription) { s.router.Remove(sub) }

// UnsubscribeTag removes every Subscription carrying tag.
func (s *Session) UnsubscribeTag(tag string) { s.router.RemoveByTag(tag) }

// UnsubscribeEvent removes every Subscription for kind.
func (s *Session) UnsubscribeEvent(kind reply.EventKind) { s.router.RemoveByEvent(kind) }

// OnDestroy registers hook to run once the session reaches State
// Destroyed. A session already destroyed runs hook immediately.
func (s *Session) OnDestroy(hook func()) {
	if s.state.load() == StateDestroyed {
		hook()
		return
	}

	s.hooksMu.Lock()
	if s.state.load() == StateDestroyed {
		s.hooksMu.Unlock()
		hook()
		return
	}
	s.destroyHooks = append(s.destroyHooks, hook)
	s.hooksMu.Unlock()
}

// Destroy initiates graceful shutdown per spec §4.6. It is idempotent and
// safe to call from any goroutine, any number of times.
func (s *Session) Destroy() {
	s.destroyWithCause(nil)
}

func (s *Session) sendEvent(ctx context.Context, cmd queue.Command) (*reply.ReplyGroup, error) {
	h := s.queue.Enqueue(cmd)
	group, err := h.AwaitResult(ctx)
	if s.metrics != nil {
		s.metrics.SetEventsReconciled(err == nil)
	}
	return group, err
}

func (s *Session) reportState() {
	if s.metrics != nil {
		s.metrics.SessionState(s.state.load())
	}
}

// destroyWithCause runs the shutdown sequence exactly once, regardless of
// whether it was triggered by a caller's Destroy() or by a reader/writer
// task failure.
func (s *Session) destroyWithCause(cause error) {
	s.destroyOnce.Do(func() {
		s.state.store(StateShuttingDown)
		s.reportState()

		if s.cfg.TakeOwnership && s.cfg.ShutdownSignal != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_, _ = s.authCommand(ctx, queue.Command{Verb: "SIGNAL", Args: []string{s.cfg.ShutdownSignal}})
			cancel()
		}

		if s.transport != nil {
			_ = s.transport.Close()
		}
		if s.cancel != nil {
			s.cancel()
		}

		interruptCause := cause
		if interruptCause == nil {
			interruptCause = errs.New(errs.Closed, "session destroyed")
		}
		if s.queue != nil {
			s.queue.InterruptAll(interruptCause)
		}
		if s.router != nil {
			s.router.Shutdown()
		}

		s.state.store(StateDestroyed)
		s.reportState()

		s.hooksMu.Lock()
		hooks := s.destroyHooks
		s.destroyHooks = nil
		s.hooksMu.Unlock()

		for _, h := range hooks {
			h()
		}
	})
}

// readerLoop is the session's sole reader task: Transport -> Framer ->
// Parser -> Queue/Router. It runs until the Transport closes or a
// ProtocolError is observed, at which point it destroys the session.
func (s *Session) readerLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := s.reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				if group, ferr := s.parser.Finalize(); ferr != nil {
					s.log.Error("protocol error finalizing in-flight reply group", logging.F("error", ferr))
					s.destroyWithCause(ferr)
					return ferr
				} else if group != nil {
					s.route(group)
				}
				s.destroyWithCause(errs.New(errs.Io, "transport closed"))
				return nil
			}
			s.log.Error("transport read failed", logging.F("error", err))
			s.destroyWithCause(err)
			return err
		}

		group, perr := s.parser.Feed(line)
		if perr != nil {
			s.log.Error("reply parser rejected a line", logging.F("error", perr))
			s.destroyWithCause(perr)
			return perr
		}
		if group == nil {
			continue
		}
		s.route(group)
	}
}

func (s *Session) route(group *reply.ReplyGroup) {
	if group.Sync {
		if err := s.queue.MatchReply(group); err != nil {
			s.log.Error("command queue rejected a synchronous reply", logging.F("error", err))
			s.destroyWithCause(err)
		}
		return
	}
	if s.metrics != nil {
		s.metrics.EventDispatched(group.EventKind)
	}
	s.router.Dispatch(group)
}

// writerLoop is the session's sole writer task: dequeue -> Transport.Write.
// It wakes on Queue.Notify (new head available) and otherwise backstops
// with a short idle poll.
func (s *Session) writerLoop(ctx context.Context) error {
	for {
		payload, ok := s.queue.NextWrite()
		if ok {
			if _, err := s.transport.Write(payload); err != nil {
				werr := errs.Wrap(errs.Io, err)
				s.log.Error("transport write failed", logging.F("error", err))
				s.destroyWithCause(werr)
				return werr
			}
			s.queue.WriteDone()
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.queue.Notify():
		case <-time.After(writerIdleInterval):
		}
	}
}
