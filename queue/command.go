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

// Package queue serializes outgoing commands onto the transport and matches
// each synchronous reply-group back to the command that produced it, in
// FIFO order, with cancellation and shutdown-interruption semantics.
package queue

import "strings"

// Command is an outgoing control-protocol request: a verb, zero or more
// arguments, and an optional inline data block terminated on the wire by a
// lone '.' line.
type Command struct {
	Verb string
	Args []string
	Data []string
}

// Encode renders the command as the exact bytes written to the transport,
// always CRLF-terminated per control-spec.
func (c Command) Encode() []byte {
	var b strings.Builder

	// Commands carrying an inline data block are themselves prefixed with
	// '+' per control-spec, mirroring the '+' reply separator.
	if c.Data != nil {
		b.WriteByte('+')
	}
	b.WriteString(c.Verb)
	for _, a := range c.Args {
		b.WriteByte(' ')
		b.WriteString(a)
	}

	if c.Data == nil {
		b.WriteString("\r\n")
		return []byte(b.String())
	}

	b.WriteString("\r\n")
	for _, line := range c.Data {
		// Dot-stuffing: a data line that itself starts with '.' gets a
		// second leading '.' so the reader can't mistake it for the
		// block-terminating lone-dot line.
		if strings.HasPrefix(line, ".") {
			b.WriteByte('.')
		}
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	b.WriteString(".\r\n")
	return []byte(b.String())
}
