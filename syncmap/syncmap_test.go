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

package syncmap_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/tor-control/syncmap"
)

var _ = Describe("Map[K,V]", func() {
	It("supports Store/Load/LoadOrStore/Swap/CompareAndSwap/CompareAndDelete/LoadAndDelete/Delete", func() {
		m := &syncmap.Map[string, int]{}

		m.Store("a", 1)
		v, ok := m.Load("a")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1))

		act, loaded := m.LoadOrStore("a", 2)
		Expect(loaded).To(BeTrue())
		Expect(act).To(Equal(1))

		act, loaded = m.LoadOrStore("b", 3)
		Expect(loaded).To(BeFalse())
		Expect(act).To(Equal(3))

		Expect(m.CompareAndSwap("a", 1, 10)).To(BeTrue())
		v, _ = m.Load("a")
		Expect(v).To(Equal(10))

		prev, loaded := m.Swap("b", 30)
		Expect(loaded).To(BeTrue())
		Expect(prev).To(Equal(3))

		Expect(m.CompareAndDelete("b", 30)).To(BeTrue())
		_, ok = m.Load("b")
		Expect(ok).To(BeFalse())

		vv, loaded := m.LoadAndDelete("a")
		Expect(loaded).To(BeTrue())
		Expect(vv).To(Equal(10))
		_, ok = m.Load("a")
		Expect(ok).To(BeFalse())
	})

	It("ranges over all entries and supports early stop", func() {
		m := &syncmap.Map[string, int]{}
		m.Store("a", 1)
		m.Store("b", 2)
		m.Store("c", 3)

		sum := 0
		m.Range(func(_ string, v int) bool {
			sum += v
			return true
		})
		Expect(sum).To(Equal(6))

		count := 0
		m.Range(func(_ string, _ int) bool {
			count++
			return false
		})
		Expect(count).To(Equal(1))
	})

	It("reports Len and Keys", func() {
		m := &syncmap.Map[string, int]{}
		m.Store("a", 1)
		m.Store("b", 2)
		Expect(m.Len()).To(Equal(2))
		Expect(m.Keys()).To(ConsistOf("a", "b"))
	})

	It("is safe under concurrent access", func() {
		m := &syncmap.Map[int, int]{}
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				m.Store(i, i)
				_, _ = m.Load(i)
				m.CompareAndSwap(i, i, i+1)
			}(i)
		}
		wg.Wait()
		Expect(m.Len()).To(Equal(100))
	})
})
