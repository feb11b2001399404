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

// Package discovery is a collaborator the session core consumes but does
// not own: a bounded poll-and-watch helper for the control-port file and
// cookie file a starting Tor process writes to its data directory. It has
// no knowledge of the control protocol; it only waits for a path to appear
// and become readable.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nabbar/tor-control/errs"
	"github.com/nabbar/tor-control/logging"
)

// pollFallback is the poll interval used when no filesystem-watch event
// arrives in time, and whenever fsnotify itself cannot be started (e.g. an
// overlay filesystem that does not deliver inotify events reliably inside
// a container). Spec §6 names this exact value for cookie/control-port
// file discovery.
const pollFallback = 250 * time.Millisecond

// WaitForFile blocks until path exists and can be opened for reading, or
// ctx is done; errors reported by the watcher are logged and waiting
// continues. It watches path's parent
// directory with fsnotify so a Tor process finishing its write wakes the
// wait immediately, falling back to polling at pollFallback so the helper
// still makes progress if the watch cannot be established.
func WaitForFile(ctx context.Context, path string, log logging.Logger) error {
	if log == nil {
		log = logging.Nop
	}

	if ready(path) {
		return nil
	}

	watcher, werr := fsnotify.NewWatcher()
	if werr == nil {
		defer watcher.Close()
		dir := filepath.Dir(path)
		if aerr := watcher.Add(dir); aerr != nil {
			log.Debug("discovery: falling back to polling, directory watch failed",
				logging.F("dir", dir), logging.F("error", aerr))
			watcher = nil
		}
	} else {
		log.Debug("discovery: falling back to polling, watcher unavailable", logging.F("error", werr))
		watcher = nil
	}

	ticker := time.NewTicker(pollFallback)
	defer ticker.Stop()

	for {
		if ready(path) {
			return nil
		}

		if watcher == nil {
			select {
			case <-ctx.Done():
				return errs.Wrap(errs.Io, ctx.Err())
			case <-ticker.C:
				continue
			}
		}

		select {
		case <-ctx.Done():
			return errs.Wrap(errs.Io, ctx.Err())
		case ev, ok := <-watcher.Events:
			if !ok {
				watcher = nil
				continue
			}
			if filepath.Clean(ev.Name) == filepath.Clean(path) {
				continue // re-check on next loop iteration
			}
		case werr, ok := <-watcher.Errors:
			if ok {
				log.Debug("discovery: watcher reported an error, continuing to poll", logging.F("error", werr))
			}
		case <-ticker.C:
			continue
		}
	}
}

// ready reports whether path exists, is a regular file, and can be opened
// for reading right now.
func ready(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// ReadCookie waits for cookiePath to become ready and then returns its full
// contents. It does not validate the cookie's length; that is the session
// core's job (spec §4.6's COOKIE/SAFECOOKIE handshakes).
func ReadCookie(ctx context.Context, cookiePath string, log logging.Logger) ([]byte, error) {
	if err := WaitForFile(ctx, cookiePath, log); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(cookiePath)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err)
	}
	return b, nil
}
