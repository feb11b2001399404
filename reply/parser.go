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

package reply

import (
	"strconv"
	"strings"

	"github.com/nabbar/tor-control/errs"
)

type parserState int

const (
	stateIdle parserState = iota
	stateAccumulating
	stateInBlock
)

// Parser turns framed lines into ReplyGroups one at a time. It is not
// concurrency-safe; a single reader task owns it for a session's lifetime.
type Parser struct {
	state parserState

	group    []Reply
	hadBlock bool

	blockIdx int
	blockBuf []string
}

// NewParser returns a Parser positioned in its initial Idle state.
func NewParser() *Parser {
	return &Parser{state: stateIdle}
}

// Feed processes one framed line (terminator already stripped). It returns
// a completed ReplyGroup when the line closes one, nil with no error when
// the group is still accumulating, or a ProtocolError that the caller must
// treat as fatal to the session.
func (p *Parser) Feed(line string) (*ReplyGroup, error) {
	if p.state == stateInBlock {
		if line == "." {
			p.group[p.blockIdx].Body = strings.Join(p.blockBuf, "\n")
			p.blockBuf = nil
			p.state = stateAccumulating
			return nil, nil
		}
		// Dot-unstuffing: a line doubled to "..foo" on the wire to escape
		// an original leading '.' is restored to ".foo" here.
		if strings.HasPrefix(line, "..") {
			line = line[1:]
		}
		p.blockBuf = append(p.blockBuf, line)
		return nil, nil
	}

	if len(line) < 4 {
		return nil, errs.New(errs.ProtocolError, "reply line shorter than 4 characters")
	}

	status, err := strconv.Atoi(line[:3])
	if err != nil {
		return nil, errs.New(errs.ProtocolError, "reply status is not three digits")
	}
	sep := line[3]
	msg := line[4:]

	switch sep {
	case ' ':
		p.group = append(p.group, Reply{Status: status, Message: msg})
		return p.finalize(), nil
	case '-':
		p.group = append(p.group, Reply{Status: status, Message: msg})
		p.state = stateAccumulating
		return nil, nil
	case '+':
		p.group = append(p.group, Reply{Status: status, Message: msg})
		p.blockIdx = len(p.group) - 1
		p.hadBlock = true
		p.state = stateInBlock
		return nil, nil
	default:
		return nil, errs.New(errs.ProtocolError, "unrecognized reply separator")
	}
}

// finalize closes the in-flight group, applies the trailing-"650 OK"
// suppression rule for multi-line async groups, and resets the state
// machine to Idle.
func (p *Parser) finalize() *ReplyGroup {
	replies := p.group
	hadBlock := p.hadBlock
	p.group = nil
	p.hadBlock = false
	p.state = stateIdle

	sync := len(replies) == 0 || replies[0].Status/100 != 6

	if !sync && hadBlock && len(replies) > 1 {
		last := replies[len(replies)-1]
		if last.Body == "" && last.Message == "OK" {
			replies = replies[:len(replies)-1]
		}
	}

	g := &ReplyGroup{Sync: sync, Replies: replies}
	if !sync && len(replies) > 0 {
		token, _, found := strings.Cut(replies[0].Message, " ")
		if !found {
			token = replies[0].Message
		}
		kind, _ := ParseEventKind(token)
		g.EventKind = kind
	}
	return g
}

// Finalize handles a clean transport EOF with a group still in flight. A
// synchronous in-flight group is a protocol violation (the queue head never
// got its reply); an asynchronous one is dropped silently, matching a dirty
// shutdown mid-event.
func (p *Parser) Finalize() (*ReplyGroup, error) {
	if len(p.group) == 0 {
		return nil, nil
	}

	sync := p.group[0].Status/100 != 6
	p.group = nil
	p.hadBlock = false
	p.state = stateIdle

	if sync {
		return nil, errs.New(errs.ProtocolError, "stream ended mid-response")
	}
	return nil, nil
}
