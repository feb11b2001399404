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
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/nabbar/tor-control/errs"
	"github.com/nabbar/tor-control/queue"
	"github.com/nabbar/tor-control/reply"
)

const (
	protocolInfoVersion = 1
	safeCookieNonceLen  = 32
	cookieLen           = 32
)

// serverKey and controllerKey are the fixed HMAC-SHA256 keys control-spec
// §3.5 defines for the two directions of the SAFECOOKIE handshake.
var (
	serverKey = []byte("Tor safe cookie authentication " +
		"server-to-controller hash")
	controllerKey = []byte("Tor safe cookie authentication " +
		"controller-to-server hash")
)

// protocolInfo is the parsed result of a PROTOCOLINFO reply.
type protocolInfo struct {
	methods    []string
	cookieFile string
	version    string
}

func (p protocolInfo) supports(m AuthMethod) bool {
	for _, a := range p.methods {
		if AuthMethod(a) == m {
			return true
		}
	}
	return false
}

// parseKV splits a space-joined sequence of KEY=VALUE tokens, the same
// shape control-spec uses for PROTOCOLINFO's AUTH/VERSION lines.
func parseKV(s string) map[string]string {
	out := make(map[string]string)
	for _, tok := range strings.Fields(s) {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) == 2 {
			out[kv[0]] = kv[1]
		}
	}
	return out
}

func parseProtocolInfo(group *reply.ReplyGroup) (protocolInfo, error) {
	lines := make([]string, 0, len(group.Replies))
	for _, r := range group.Replies {
		lines = append(lines, r.Message)
	}
	fields := parseKV(strings.Join(lines, " "))

	methods, ok := fields["METHODS"]
	if !ok {
		return protocolInfo{}, errs.New(errs.ProtocolError, "PROTOCOLINFO reply missing AUTH METHODS")
	}

	info := protocolInfo{methods: strings.Split(methods, ",")}
	if cf, ok := fields["COOKIEFILE"]; ok {
		info.cookieFile = strings.Trim(cf, `"`)
	}
	if v, ok := fields["Tor"]; ok {
		info.version = strings.Trim(v, `"`)
	}
	return info, nil
}

// selectAuthMethod applies the policy from spec §4.6 step 3: honor an
// explicit caller choice, otherwise prefer a present cookie file, then
// SAFECOOKIE, then PASSWORD, then NULL.
func selectAuthMethod(cfg Config, info protocolInfo) (AuthMethod, error) {
	if cfg.Auth != AuthAuto {
		if !info.supports(cfg.Auth) {
			return "", errs.New(errs.AuthFailed, "Tor does not advertise the requested authentication method")
		}
		return cfg.Auth, nil
	}

	switch {
	case info.supports(AuthCookie) && info.cookieFile != "":
		return AuthCookie, nil
	case info.supports(AuthSafeCookie):
		return AuthSafeCookie, nil
	case info.supports(AuthPassword):
		return AuthPassword, nil
	case info.supports(AuthNull):
		return AuthNull, nil
	default:
		return "", errs.New(errs.AuthFailed, "no supported authentication method advertised")
	}
}

// authCommand enqueues an authentication-stage command and translates a
// CommandFailed result into AuthFailed, per spec §4.6's failure semantics.
func (s *Session) authCommand(ctx context.Context, cmd queue.Command) (*reply.ReplyGroup, error) {
	h := s.queue.Enqueue(cmd)
	group, err := h.AwaitResult(ctx)
	if err != nil {
		if e, ok := err.(*errs.Error); ok && e.Code() == errs.CommandFailed {
			return nil, errs.WithStatus(errs.AuthFailed, e.Status(), e.Message())
		}
		return nil, err
	}
	return group, nil
}

func readCookie(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.WithCause(errs.AuthFailed, err)
	}
	if len(b) != cookieLen {
		return nil, errs.New(errs.AuthFailed, "authentication cookie has unexpected length")
	}
	return b, nil
}

func computeHMAC256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

// authenticateNull performs the NULL handshake: AUTHENTICATE with no
// argument.
func (s *Session) authenticateNull(ctx context.Context) error {
	_, err := s.authCommand(ctx, queue.Command{Verb: "AUTHENTICATE"})
	return err
}

// authenticatePassword performs the PASSWORD handshake, quoting and
// escaping the password per control-spec's QuotedString grammar.
func (s *Session) authenticatePassword(ctx context.Context, password string) error {
	_, err := s.authCommand(ctx, queue.Command{Verb: "AUTHENTICATE", Args: []string{quoteString(password)}})
	return err
}

// quoteString renders s as control-spec's QuotedString: backslash-escaping
// '\\' and '"' literally, and '\r'/'\n' as the two-character sequences
// "\r"/"\n" so a password can never prematurely terminate the AUTHENTICATE
// line.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// authenticateCookie performs the COOKIE handshake: read the cookie file
// verbatim and send its hex encoding.
func (s *Session) authenticateCookie(ctx context.Context, cookiePath string) error {
	cookie, err := readCookie(cookiePath)
	if err != nil {
		return err
	}
	_, err = s.authCommand(ctx, queue.Command{Verb: "AUTHENTICATE", Args: []string{hex.EncodeToString(cookie)}})
	return err
}

// authenticateSafeCookie performs the SAFECOOKIE challenge-response
// handshake, grounded on control-spec §3.5's two-directional HMAC
// construction.
func (s *Session) authenticateSafeCookie(ctx context.Context, cookiePath string) error {
	cookie, err := readCookie(cookiePath)
	if err != nil {
		return err
	}

	clientNonce := make([]byte, safeCookieNonceLen)
	if _, err := rand.Read(clientNonce); err != nil {
		return errs.WithCause(errs.AuthFailed, err)
	}

	group, err := s.authCommand(ctx, queue.Command{
		Verb: "AUTHCHALLENGE",
		Args: []string{"SAFECOOKIE", hex.EncodeToString(clientNonce)},
	})
	if err != nil {
		return err
	}
	if len(group.Replies) == 0 {
		return errs.New(errs.ProtocolError, "AUTHCHALLENGE reply had no body")
	}

	fields := parseKV(group.Replies[0].Message)
	serverHashHex, ok := fields["SERVERHASH"]
	if !ok {
		return errs.New(errs.ProtocolError, "AUTHCHALLENGE reply missing SERVERHASH")
	}
	serverNonceHex, ok := fields["SERVERNONCE"]
	if !ok {
		return errs.New(errs.ProtocolError, "AUTHCHALLENGE reply missing SERVERNONCE")
	}

	serverHash, err := hex.DecodeString(serverHashHex)
	if err != nil || len(serverHash) != sha256.Size {
		return errs.New(errs.ProtocolError, "AUTHCHALLENGE reply had a malformed SERVERHASH")
	}
	serverNonce, err := hex.DecodeString(serverNonceHex)
	if err != nil || len(serverNonce) != safeCookieNonceLen {
		return errs.New(errs.ProtocolError, "AUTHCHALLENGE reply had a malformed SERVERNONCE")
	}

	msg := bytes.Join([][]byte{cookie, clientNonce, serverNonce}, nil)
	expected := computeHMAC256(serverKey, msg)
	if !hmac.Equal(expected, serverHash) {
		return errs.New(errs.AuthFailed, fmt.Sprintf("server hash mismatch: expected %x, got %x", expected, serverHash))
	}

	clientHash := computeHMAC256(controllerKey, msg)
	_, err = s.authCommand(ctx, queue.Command{Verb: "AUTHENTICATE", Args: []string{hex.EncodeToString(clientHash)}})
	return err
}
