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

import (
	"fmt"
	"time"

	libval "github.com/go-playground/validator/v10"

	"github.com/nabbar/tor-control/errs"
)

// AuthMethod names one of the authentication handshakes the control
// protocol supports. The zero value, AuthAuto, asks Connect to pick the
// strongest method Tor's PROTOCOLINFO reply advertises.
type AuthMethod string

const (
	AuthAuto       AuthMethod = ""
	AuthNull       AuthMethod = "NULL"
	AuthPassword   AuthMethod = "PASSWORD"
	AuthCookie     AuthMethod = "COOKIE"
	AuthSafeCookie AuthMethod = "SAFECOOKIE"
)

// TransportKind selects which Transport variant Config.Dial constructs.
type TransportKind string

const (
	TransportTCP  TransportKind = "tcp"
	TransportUnix TransportKind = "unix"
)

// Config is the typed, validated configuration for one session: which
// transport to dial, which authentication policy to apply, and the
// timeouts governing connect/shutdown. It configures the session itself,
// not Tor's own option keyspace.
type Config struct {
	// Transport selects TCP or unix-domain dialing.
	Transport TransportKind `validate:"required,oneof=tcp unix" mapstructure:"transport"`

	// Address is "host:port" for TransportTCP or a filesystem path for
	// TransportUnix.
	Address string `validate:"required" mapstructure:"address"`

	// Auth selects the authentication method. AuthAuto defers to
	// PROTOCOLINFO's advertised methods, preferring in order: COOKIE when
	// a cookie file is advertised, SAFECOOKIE, PASSWORD, NULL.
	Auth AuthMethod `validate:"omitempty,oneof=NULL PASSWORD COOKIE SAFECOOKIE" mapstructure:"auth"`

	// Password is required when Auth is AuthPassword.
	Password string `validate:"required_if=Auth PASSWORD" mapstructure:"password"`

	// CookiePath overrides the cookie file path PROTOCOLINFO advertises;
	// leave empty to use the advertised path.
	CookiePath string `mapstructure:"cookiePath"`

	// ConnectTimeout bounds dialing the Transport.
	ConnectTimeout time.Duration `validate:"required" mapstructure:"connectTimeout"`

	// HandshakeTimeout bounds the whole PROTOCOLINFO+AUTHENTICATE exchange.
	HandshakeTimeout time.Duration `validate:"required" mapstructure:"handshakeTimeout"`

	// TakeOwnership requests TAKEOWNERSHIP on connect, and SIGNAL
	// HALT/SHUTDOWN (see ShutdownSignal) best-effort on destroy. Left to
	// the caller per the core's design: the session never decides this on
	// its own.
	TakeOwnership bool `mapstructure:"takeOwnership"`

	// ShutdownSignal is the SIGNAL argument sent on destroy when
	// TakeOwnership is set; "SHUTDOWN" for a graceful Tor shutdown or
	// "HALT" for an immediate stop.
	ShutdownSignal string `validate:"omitempty,oneof=HALT SHUTDOWN" mapstructure:"shutdownSignal"`
}

// DefaultConfig returns a Config with conservative timeouts and
// TakeOwnership disabled, suitable as a base for callers to override.
// ShutdownSignal defaults to "HALT", Tor's immediate stop, for a process
// the controller owns.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:   10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		ShutdownSignal:   "HALT",
	}
}

// Validate reports whether the Config is structurally well-formed. It
// does not touch the network.
func (c Config) Validate() error {
	if err := libval.New().Struct(c); err != nil {
		if _, ok := err.(*libval.InvalidValidationError); ok {
			return errs.WithCause(errs.Unsupported, err)
		}
		msgs := ""
		for _, fe := range err.(libval.ValidationErrors) {
			if msgs != "" {
				msgs += "; "
			}
			msgs += fmt.Sprintf("field %q fails constraint %q", fe.Namespace(), fe.ActualTag())
		}
		return errs.New(errs.Unsupported, "invalid session config: "+msgs)
	}
	return nil
}
