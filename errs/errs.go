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

// Package errs defines the error taxonomy shared by every component of the
// control-protocol session core: a closed set of categories (not Go types)
// that callers switch on, each carrying an optional parent error and, for
// the two categories that need it, a Tor status code and message.
package errs

import (
	"errors"
	"fmt"
)

// Code is a closed category of failure. It is intentionally small and
// stable: new wire behavior is handled inside an existing category rather
// than growing this enum, so callers' switches stay exhaustive.
type Code uint8

const (
	// Unknown is never returned by this package; it exists so the zero
	// value of Code is not mistaken for a real category.
	Unknown Code = iota

	// Io wraps a transport-level read/write/connect failure.
	Io

	// Unsupported marks a Transport variant or endpoint the host/platform
	// cannot provide (filesystem sockets unavailable, path too long or
	// containing a newline).
	Unsupported

	// ProtocolError marks bytes that violate the control-protocol grammar,
	// or a structural invariant violation (synchronous reply with no
	// outstanding command, reply while the queue head was never written).
	ProtocolError

	// AuthFailed marks a non-250 reply to the authentication handshake.
	AuthFailed

	// CommandFailed marks a non-2xx reply to an ordinary command.
	CommandFailed

	// Cancelled marks a handle the caller cancelled.
	Cancelled

	// Interrupted marks a handle resolved because the session was
	// destroyed while the command was still pending.
	Interrupted

	// Closed marks an API call made after the session was destroyed.
	Closed
)

func (c Code) String() string {
	switch c {
	case Io:
		return "io"
	case Unsupported:
		return "unsupported"
	case ProtocolError:
		return "protocol_error"
	case AuthFailed:
		return "auth_failed"
	case CommandFailed:
		return "command_failed"
	case Cancelled:
		return "cancelled"
	case Interrupted:
		return "interrupted"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Error makes a bare Code usable as an errors.Is target.
func (c Code) Error() string { return c.String() }

// Error is the error type returned by every public operation in this
// repository. It always carries a Code; Status/Message are populated only
// for AuthFailed and CommandFailed, where the Tor reply carries them.
type Error struct {
	code    Code
	status  int
	message string
	parent  error
}

// New builds an Error for a category with no associated parent error.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap builds an Error for a category around an underlying cause.
func Wrap(code Code, parent error) *Error {
	return &Error{code: code, parent: parent}
}

// WithStatus builds an AuthFailed/CommandFailed Error carrying the Tor
// reply's numeric status and message.
func WithStatus(code Code, status int, message string) *Error {
	return &Error{code: code, status: status, message: message}
}

// WithCause attaches a cause (e.g. a caller-supplied cancellation reason)
// to a Cancelled/Interrupted Error.
func WithCause(code Code, cause error) *Error {
	return &Error{code: code, parent: cause}
}

func (e *Error) Code() Code { return e.code }

// Status returns the Tor reply status for AuthFailed/CommandFailed errors,
// and 0 otherwise.
func (e *Error) Status() int { return e.status }

// Message returns the Tor reply text for AuthFailed/CommandFailed errors,
// and "" otherwise.
func (e *Error) Message() string { return e.message }

func (e *Error) Error() string {
	switch {
	case e.status != 0 && e.message != "":
		return fmt.Sprintf("%s: %d %s", e.code, e.status, e.message)
	case e.message != "":
		return fmt.Sprintf("%s: %s", e.code, e.message)
	case e.parent != nil:
		return fmt.Sprintf("%s: %s", e.code, e.parent.Error())
	default:
		return e.code.String()
	}
}

func (e *Error) Unwrap() error { return e.parent }

// Is lets errors.Is(err, errs.Io) (etc.) work by comparing categories: a
// *Error matches a bare Code value of the same category.
func (e *Error) Is(target error) bool {
	if c, ok := target.(Code); ok {
		return e.code == c
	}
	var o *Error
	if errors.As(target, &o) {
		return o.code == e.code
	}
	return false
}

// Is implements errors.Is for a bare Code so callers can write
// errors.Is(err, errs.Cancelled) without unwrapping an *Error first.
func (c Code) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return o.code == c
	}
	return false
}

// CodeOf returns the category of err, or Unknown if err is not an *Error
// produced by this package.
func CodeOf(err error) Code {
	var o *Error
	if errors.As(err, &o) {
		return o.code
	}
	return Unknown
}
