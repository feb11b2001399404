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

// Package syncmap provides a generic, type-safe wrapper over sync.Map. It
// backs the Event Router's subscription registry so it does not have to
// re-litigate concurrent-map safety.
package syncmap

import "sync"

// Map is a concurrency-safe key/value store with the same guarantees as
// sync.Map, typed so callers never assert on load.
type Map[K comparable, V any] struct {
	m sync.Map
}

func (o *Map[K, V]) Load(key K) (value V, ok bool) {
	raw, found := o.m.Load(key)
	if !found {
		return value, false
	}
	return raw.(V), true
}

func (o *Map[K, V]) Store(key K, value V) {
	o.m.Store(key, value)
}

func (o *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	raw, l := o.m.LoadOrStore(key, value)
	return raw.(V), l
}

func (o *Map[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	raw, l := o.m.LoadAndDelete(key)
	if !l {
		return value, false
	}
	return raw.(V), true
}

func (o *Map[K, V]) Delete(key K) {
	o.m.Delete(key)
}

func (o *Map[K, V]) Swap(key K, value V) (previous V, loaded bool) {
	raw, l := o.m.Swap(key, value)
	if !l {
		return previous, false
	}
	return raw.(V), true
}

func (o *Map[K, V]) CompareAndSwap(key K, old, new V) bool {
	return o.m.CompareAndSwap(key, old, new)
}

func (o *Map[K, V]) CompareAndDelete(key K, old V) (deleted bool) {
	return o.m.CompareAndDelete(key, old)
}

// Range iterates in sync.Map's unordered, snapshot-less fashion; f returning
// false stops iteration early.
func (o *Map[K, V]) Range(f func(key K, value V) bool) {
	o.m.Range(func(key, value any) bool {
		return f(key.(K), value.(V))
	})
}

// Len walks the whole map to count entries. It is O(n) and meant for
// diagnostics/tests, not hot paths.
func (o *Map[K, V]) Len() int {
	n := 0
	o.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Keys returns a snapshot of the current keys.
func (o *Map[K, V]) Keys() []K {
	keys := make([]K, 0)
	o.m.Range(func(key, _ any) bool {
		keys = append(keys, key.(K))
		return true
	})
	return keys
}
