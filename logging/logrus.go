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

import "github.com/sirupsen/logrus"

type logrusAdapter struct {
	e *logrus.Entry
}

// NewLogrus adapts a *logrus.Logger to satisfy Logger.
func NewLogrus(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &logrusAdapter{e: logrus.NewEntry(l)}
}

func toFields(fields []Field) logrus.Fields {
	f := make(logrus.Fields, len(fields))
	for _, v := range fields {
		f[v.Key] = v.Value
	}
	return f
}

func (l *logrusAdapter) Trace(msg string, fields ...Field) {
	l.e.WithFields(toFields(fields)).Trace(msg)
}

func (l *logrusAdapter) Debug(msg string, fields ...Field) {
	l.e.WithFields(toFields(fields)).Debug(msg)
}

func (l *logrusAdapter) Info(msg string, fields ...Field) {
	l.e.WithFields(toFields(fields)).Info(msg)
}

func (l *logrusAdapter) Warn(msg string, fields ...Field) {
	l.e.WithFields(toFields(fields)).Warn(msg)
}

func (l *logrusAdapter) Error(msg string, fields ...Field) {
	l.e.WithFields(toFields(fields)).Error(msg)
}

func (l *logrusAdapter) With(fields ...Field) Logger {
	return &logrusAdapter{e: l.e.WithFields(toFields(fields))}
}
