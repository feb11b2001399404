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

package discovery_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/tor-control/discovery"
	"github.com/nabbar/tor-control/errs"
)

var _ = Describe("WaitForFile", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "torctl-discovery")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("returns immediately when the file already exists", func() {
		path := filepath.Join(dir, "control_auth_cookie")
		Expect(os.WriteFile(path, []byte("already here"), 0600)).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		Expect(discovery.WaitForFile(ctx, path, nil)).To(Succeed())
	})

	It("unblocks once a file appears after a delay", func() {
		path := filepath.Join(dir, "control_auth_cookie")

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(path, []byte("written late"), 0600)
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		Expect(discovery.WaitForFile(ctx, path, nil)).To(Succeed())
	})

	It("fails with an Io error once the deadline passes", func() {
		path := filepath.Join(dir, "never-appears")

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := discovery.WaitForFile(ctx, path, nil)
		Expect(err).To(HaveOccurred())
		Expect(errs.CodeOf(err)).To(Equal(errs.Io))
	})
})

var _ = Describe("ReadCookie", func() {
	It("waits for and reads the cookie file's full contents", func() {
		dir, err := os.MkdirTemp("", "torctl-cookie")
		Expect(err).ToNot(HaveOccurred())
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "control_auth_cookie")
		want := make([]byte, 32)
		for i := range want {
			want[i] = byte(i)
		}
		Expect(os.WriteFile(path, want, 0600)).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		got, err := discovery.ReadCookie(ctx, path, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(want))
	})
})
