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

package session

import "sync/atomic"

// State is the Session's lifecycle position. Transitions are monotonic
// forward except that any state may jump directly to Destroyed.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticating
	StateReady
	StateShuttingDown
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateAuthenticating:
		return "Authenticating"
	case StateReady:
		return "Ready"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// stateBox is a small atomic-guarded State holder (an atomic.Int32),
// following the same atomic discipline the corpus uses for shared
// lifecycle flags.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) load() State {
	return State(b.v.Load())
}

func (b *stateBox) store(s State) {
	b.v.Store(int32(s))
}

// storeIfBelow transitions to s only if the current state is earlier in
// the monotonic ordering, or if s is Destroyed (always allowed). Reports
// whether the transition took effect.
func (b *stateBox) storeIfBelow(s State) bool {
	for {
		cur := State(b.v.Load())
		if cur == StateDestroyed {
			return false
		}
		if s != StateDestroyed && s <= cur {
			return false
		}
		if b.v.CompareAndSwap(int32(cur), int32(s)) {
			return true
		}
	}
}
