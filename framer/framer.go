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

// Package framer turns a byte stream into discrete protocol lines: it
// tolerates both CRLF and bare LF terminators and enforces a maximum line
// length so a misbehaving peer cannot grow an unbounded buffer.
package framer

import (
	"bufio"
	"io"

	"github.com/nabbar/tor-control/errs"
)

// MaxLineSize is the largest line this framer accepts, including the
// terminator. A line exceeding it is a ProtocolError, not an Io error: the
// stream is still structurally readable, the peer just violated the
// grammar.
const MaxLineSize = 64 * 1024

// Framer reads CRLF- or LF-terminated lines off an underlying reader, with
// the trailing terminator stripped.
type Framer struct {
	r *bufio.Reader
}

// New wraps r in a Framer.
func New(r io.Reader) *Framer {
	return &Framer{r: bufio.NewReaderSize(r, 4096)}
}

// ReadLine returns the next line with any trailing CR or LF removed. io.EOF
// is returned verbatim when the underlying stream ends cleanly between
// lines; any other read failure is wrapped as errs.Io. A line (including
// its terminator) longer than MaxLineSize is reported as errs.ProtocolError.
func (f *Framer) ReadLine() (string, error) {
	var buf []byte

	for {
		chunk, err := f.r.ReadSlice('\n')
		buf = append(buf, chunk...)
		if len(buf) > MaxLineSize {
			return "", errs.New(errs.ProtocolError, "line exceeds maximum size")
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && len(buf) == 0 {
			return "", io.EOF
		}
		if err == io.EOF {
			return "", errs.New(errs.ProtocolError, "stream ended mid-line")
		}
		if err != nil {
			return "", errs.Wrap(errs.Io, err)
		}
		break
	}

	buf = buf[:len(buf)-1]
	if n := len(buf); n > 0 && buf[n-1] == '\r' {
		buf = buf[:n-1]
	}
	return string(buf), nil
}
