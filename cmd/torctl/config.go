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

package main

import (
	"context"
	"time"

	spfvpr "github.com/spf13/viper"

	"github.com/nabbar/tor-control/discovery"
	"github.com/nabbar/tor-control/logging"
	"github.com/nabbar/tor-control/session"
)

// sessionConfigFromViper builds a session.Config from whatever layered
// source (flag, env, config file) viper resolved, following the corpus's
// own flags-then-env-then-file precedence.
func sessionConfigFromViper() session.Config {
	cfg := session.DefaultConfig()
	cfg.Transport = session.TransportKind(spfvpr.GetString("transport"))
	cfg.Address = spfvpr.GetString("address")
	cfg.Auth = session.AuthMethod(spfvpr.GetString("auth"))
	cfg.Password = spfvpr.GetString("password")
	cfg.CookiePath = spfvpr.GetString("cookiePath")

	if d := spfvpr.GetDuration("connectTimeout"); d > 0 {
		cfg.ConnectTimeout = d
	}
	if d := spfvpr.GetDuration("handshakeTimeout"); d > 0 {
		cfg.HandshakeTimeout = d
	}
	cfg.TakeOwnership = spfvpr.GetBool("takeOwnership")
	if s := spfvpr.GetString("shutdownSignal"); s != "" {
		cfg.ShutdownSignal = s
	}

	return cfg
}

// connect builds the session.Config from viper and dials a Session. When
// an explicit cookie path override was supplied, it waits for that file to
// appear first (discovery.WaitForFile) so the CLI tolerates a race against
// a Tor process still starting up, per spec §6's deadline-bounded retry.
func connect(ctx context.Context, log logging.Logger) (*session.Session, error) {
	cfg := sessionConfigFromViper()

	if cfg.CookiePath != "" {
		waitCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		err := discovery.WaitForFile(waitCtx, cfg.CookiePath, log)
		cancel()
		if err != nil {
			return nil, err
		}
	}

	return session.Connect(ctx, cfg, session.WithLogger(log))
}

func defaultContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
