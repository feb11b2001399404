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

// Package transport supplies the concrete byte-stream endpoints the session
// core dials into: a plain TCP control port and a unix-domain control
// socket, both satisfying the same narrow Transport interface the core
// depends on.
package transport

import (
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/nabbar/tor-control/errs"
)

// ErrAddress is returned when a transport constructor is given an empty or
// structurally invalid endpoint.
var ErrAddress = errs.New(errs.Unsupported, "invalid or empty address")

// Transport is the byte-stream endpoint the Line Framer reads from and the
// Command Queue writes to. It carries no protocol knowledge.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer

	// RemoteAddr reports the endpoint this transport is connected to, for
	// diagnostics.
	RemoteAddr() string
}

type connTransport struct {
	conn net.Conn
	addr string
}

func (c *connTransport) Read(p []byte) (int, error)  { return c.conn.Read(p) }
func (c *connTransport) Write(p []byte) (int, error) { return c.conn.Write(p) }
func (c *connTransport) Close() error                { return c.conn.Close() }
func (c *connTransport) RemoteAddr() string          { return c.addr }

// DialTCP connects to a Tor control port reachable over TCP, e.g.
// "127.0.0.1:9051".
func DialTCP(ctx context.Context, addr string) (Transport, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, ErrAddress
	}

	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err)
	}

	return &connTransport{conn: conn, addr: addr}, nil
}

// DialTimeout is a convenience wrapper around DialTCP for callers without
// their own context.
func DialTimeout(addr string, timeout time.Duration) (Transport, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return DialTCP(ctx, addr)
}

// maxUnixPathLen is the control protocol's own portable ceiling on
// unix-domain socket paths (105 bytes on any platform); DialUnix rejects
// longer paths up front instead of surfacing a kernel errno.
const maxUnixPathLen = 105

// DialUnix connects to a Tor control socket reachable over a unix-domain
// socket, e.g. "/var/run/tor/control".
func DialUnix(ctx context.Context, path string) (Transport, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrAddress
	}
	if len(path) > maxUnixPathLen {
		return nil, errs.New(errs.Unsupported, "unix socket path exceeds platform limit")
	}
	if strings.ContainsAny(path, "\r\n") {
		return nil, errs.New(errs.Unsupported, "unix socket path contains a newline")
	}

	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err)
	}

	return &connTransport{conn: conn, addr: path}, nil
}
