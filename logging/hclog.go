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

package logging

import "github.com/hashicorp/go-hclog"

type hclogAdapter struct {
	l hclog.Logger
}

// NewHCLog adapts an hclog.Logger (as produced by hclog.New) to satisfy
// Logger.
func NewHCLog(l hclog.Logger) Logger {
	if l == nil {
		l = hclog.Default()
	}
	return &hclogAdapter{l: l}
}

func toArgs(fields []Field) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}

func (h *hclogAdapter) Trace(msg string, fields ...Field) {
	h.l.Trace(msg, toArgs(fields)...)
}

func (h *hclogAdapter) Debug(msg string, fields ...Field) {
	h.l.Debug(msg, toArgs(fields)...)
}

func (h *hclogAdapter) Info(msg string, fields ...Field) {
	h.l.Info(msg, toArgs(fields)...)
}

func (h *hclogAdapter) Warn(msg string, fields ...Field) {
	h.l.Warn(msg, toArgs(fields)...)
}

func (h *hclogAdapter) Error(msg string, fields ...Field) {
	h.l.Error(msg, toArgs(fields)...)
}

func (h *hclogAdapter) With(fields ...Field) Logger {
	return &hclogAdapter{l: h.l.With(toArgs(fields)...)}
}
