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

package logging_test

import (
	"bytes"

	"github.com/hashicorp/go-hclog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/nabbar/tor-control/logging"
)

var _ = Describe("Nop", func() {
	It("never panics and With returns itself", func() {
		Expect(func() {
			logging.Nop.Info("hello", logging.F("k", "v"))
			logging.Nop.With(logging.F("a", 1)).Error("boom")
		}).ToNot(Panic())
		Expect(logging.Nop.With(logging.F("a", 1))).To(Equal(logging.Nop))
	})
})

var _ = Describe("HCLog adapter", func() {
	It("forwards messages and fields to the underlying hclog.Logger", func() {
		buf := &bytes.Buffer{}
		hl := hclog.New(&hclog.LoggerOptions{Output: buf, Level: hclog.Trace})
		l := logging.NewHCLog(hl)

		l.Info("session ready", logging.F("remote", "127.0.0.1:9051"))
		Expect(buf.String()).To(ContainSubstring("session ready"))
		Expect(buf.String()).To(ContainSubstring("127.0.0.1:9051"))
	})

	It("With() carries fields into subsequent calls", func() {
		buf := &bytes.Buffer{}
		hl := hclog.New(&hclog.LoggerOptions{Output: buf, Level: hclog.Trace})
		l := logging.NewHCLog(hl).With(logging.F("component", "queue"))

		l.Warn("retrying command")
		Expect(buf.String()).To(ContainSubstring("component"))
		Expect(buf.String()).To(ContainSubstring("retrying command"))
	})
})

var _ = Describe("Logrus adapter", func() {
	It("forwards messages and fields to the underlying logger", func() {
		buf := &bytes.Buffer{}
		base := logrus.New()
		base.SetOutput(buf)
		base.SetLevel(logrus.TraceLevel)

		l := logging.NewLogrus(base)
		l.Error("auth failed", logging.F("status", 515))

		Expect(buf.String()).To(ContainSubstring("auth failed"))
		Expect(buf.String()).To(ContainSubstring("status"))
	})
})
