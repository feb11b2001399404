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

// Package logging defines the small structured-logging collaborator every
// component in this repository accepts, plus adapters over two real
// backends (hclog, logrus). Components never log directly to stdout; they
// always go through a Logger, defaulting to a no-op one.
package logging

// Field is one piece of structured context attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F is a short constructor for Field, used at call sites to keep log
// statements readable.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the structured-logging collaborator. Every method accepts
// variadic Fields instead of a context/format string, matching the
// corpus's own logger interface shape.
type Logger interface {
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a Logger that prepends the given fields to every
	// subsequent call, without mutating the receiver.
	With(fields ...Field) Logger
}

type nop struct{}

// Nop is the default Logger: every method is a no-op. Components are
// constructed with it unless a caller supplies a real Logger.
var Nop Logger = nop{}

func (nop) Trace(string, ...Field)  {}
func (nop) Debug(string, ...Field)  {}
func (nop) Info(string, ...Field)   {}
func (nop) Warn(string, ...Field)   {}
func (nop) Error(string, ...Field)  {}
func (n nop) With(...Field) Logger  { return n }
