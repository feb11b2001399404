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

package transport_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/tor-control/errs"
	"github.com/nabbar/tor-control/transport"
)

var _ = Describe("DialTCP", func() {
	It("rejects an empty address", func() {
		_, err := transport.DialTCP(context.Background(), "")
		Expect(err).To(MatchError(transport.ErrAddress))
	})

	It("connects to a listening TCP endpoint and exchanges bytes", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		defer ln.Close()

		go func() {
			c, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			defer c.Close()
			buf := make([]byte, 5)
			_, _ = c.Read(buf)
			_, _ = c.Write([]byte("ok\r\n"))
		}()

		tr, err := transport.DialTCP(context.Background(), ln.Addr().String())
		Expect(err).ToNot(HaveOccurred())
		defer tr.Close()

		_, err = tr.Write([]byte("hello"))
		Expect(err).ToNot(HaveOccurred())

		buf := make([]byte, 4)
		n, err := tr.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("ok\r\n"))
		Expect(tr.RemoteAddr()).To(Equal(ln.Addr().String()))
	})

	It("wraps a refused connection as an Io error", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err := transport.DialTCP(ctx, "127.0.0.1:1")
		Expect(err).To(HaveOccurred())
		Expect(errs.CodeOf(err)).To(Equal(errs.Io))
	})
})

var _ = Describe("DialUnix", func() {
	It("rejects an empty path", func() {
		_, err := transport.DialUnix(context.Background(), "")
		Expect(err).To(MatchError(transport.ErrAddress))
	})

	It("rejects a path containing a newline", func() {
		_, err := transport.DialUnix(context.Background(), "/tmp/bad\npath.sock")
		Expect(errs.CodeOf(err)).To(Equal(errs.Unsupported))
	})

	It("rejects a path exceeding the platform limit", func() {
		_, err := transport.DialUnix(context.Background(), "/"+strings.Repeat("a", 200))
		Expect(errs.CodeOf(err)).To(Equal(errs.Unsupported))
	})

	It("rejects a path of exactly 106 bytes but accepts one of exactly 105", func() {
		path105 := strings.Repeat("a", 105)
		Expect(path105).To(HaveLen(105))
		_, err := transport.DialUnix(context.Background(), path105)
		// A 105-byte path must pass the length check; it fails later only
		// because it does not resolve to a real socket.
		Expect(err).To(HaveOccurred())
		Expect(errs.CodeOf(err)).ToNot(Equal(errs.Unsupported))

		path106 := strings.Repeat("a", 106)
		_, err = transport.DialUnix(context.Background(), path106)
		Expect(errs.CodeOf(err)).To(Equal(errs.Unsupported))
	})

	It("connects to a listening unix socket", func() {
		dir, err := os.MkdirTemp("", "torctl-unix")
		Expect(err).ToNot(HaveOccurred())
		defer os.RemoveAll(dir)

		sockPath := filepath.Join(dir, "control.sock")
		ln, err := net.Listen("unix", sockPath)
		Expect(err).ToNot(HaveOccurred())
		defer ln.Close()

		go func() {
			c, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			defer c.Close()
		}()

		tr, err := transport.DialUnix(context.Background(), sockPath)
		Expect(err).ToNot(HaveOccurred())
		defer tr.Close()
		Expect(tr.RemoteAddr()).To(Equal(sockPath))
	})
})
