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

package queue_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/tor-control/queue"
)

var _ = Describe("Command.Encode", func() {
	It("renders a bare verb with CRLF", func() {
		c := queue.Command{Verb: "GETINFO", Args: []string{"version"}}
		Expect(string(c.Encode())).To(Equal("GETINFO version\r\n"))
	})

	It("renders multiple arguments in order", func() {
		c := queue.Command{Verb: "SETCONF", Args: []string{`Foo=bar`, `Baz=qux`}}
		Expect(string(c.Encode())).To(Equal("SETCONF Foo=bar Baz=qux\r\n"))
	})

	It("renders a data block with a '+' prefixed verb line and a lone dot terminator", func() {
		c := queue.Command{
			Verb: "POSTDESCRIPTOR",
			Args: []string{"purpose=general"},
			Data: []string{"line1", "line2"},
		}
		Expect(string(c.Encode())).To(Equal("+POSTDESCRIPTOR purpose=general\r\nline1\r\nline2\r\n.\r\n"))
	})

	It("dot-stuffs a data line that itself starts with '.'", func() {
		c := queue.Command{
			Verb: "POSTDESCRIPTOR",
			Data: []string{".hidden", "plain"},
		}
		Expect(string(c.Encode())).To(Equal("+POSTDESCRIPTOR\r\n..hidden\r\nplain\r\n.\r\n"))
	})
})
