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

// Package reply models the Tor control-protocol reply grammar (Reply,
// ReplyGroup, EventKind) and the state machine that turns framed lines into
// ReplyGroups.
package reply

import "strings"

// Reply is a single status-tagged message produced from one or more wire
// lines sharing a status code. Body is non-empty only when the reply was
// introduced by a '+' dot-stuffed block; Message always holds the text on
// the reply's first wire line (after the status and separator).
type Reply struct {
	Status  int
	Message string
	Body    string
}

// ReplyGroup is an ordered, non-empty sequence of Reply. Sync groups match
// one pending command; async groups (status 6xx) carry an event.
type ReplyGroup struct {
	Sync      bool
	EventKind EventKind
	Replies   []Reply
}

// EventPayload extracts the string a subscriber receives for an async
// ReplyGroup: the dot-stuffed body when the first reply carried one,
// otherwise the first reply's message with its leading event-kind token
// stripped.
func (g *ReplyGroup) EventPayload() string {
	if len(g.Replies) == 0 {
		return ""
	}
	first := g.Replies[0]
	if first.Body != "" {
		return first.Body
	}
	_, rest, found := strings.Cut(first.Message, " ")
	if !found {
		return ""
	}
	return rest
}

// EventKind is a closed enumeration of the asynchronous event tags defined
// by the Tor control specification.
type EventKind string

const (
	EventCirc               EventKind = "CIRC"
	EventStream              EventKind = "STREAM"
	EventOrConn              EventKind = "ORCONN"
	EventBW                  EventKind = "BW"
	EventDebug               EventKind = "DEBUG"
	EventInfo                EventKind = "INFO"
	EventNotice              EventKind = "NOTICE"
	EventWarn                EventKind = "WARN"
	EventErr                 EventKind = "ERR"
	EventNewDesc             EventKind = "NEWDESC"
	EventAddrMap             EventKind = "ADDRMAP"
	EventDescChanged         EventKind = "DESCCHANGED"
	EventStatusGeneral       EventKind = "STATUS_GENERAL"
	EventStatusClient        EventKind = "STATUS_CLIENT"
	EventStatusServer        EventKind = "STATUS_SERVER"
	EventGuard               EventKind = "GUARD"
	EventNS                  EventKind = "NS"
	EventStreamBW            EventKind = "STREAM_BW"
	EventClientsSeen         EventKind = "CLIENTS_SEEN"
	EventNewConsensus        EventKind = "NEWCONSENSUS"
	EventBuildTimeoutSet     EventKind = "BUILDTIMEOUT_SET"
	EventSignal              EventKind = "SIGNAL"
	EventConfChanged         EventKind = "CONF_CHANGED"
	EventCircMinor           EventKind = "CIRC_MINOR"
	EventTransportLaunched   EventKind = "TRANSPORT_LAUNCHED"
	EventConnBW              EventKind = "CONN_BW"
	EventCircBW              EventKind = "CIRC_BW"
	EventCellStats           EventKind = "CELL_STATS"
	EventHSDesc              EventKind = "HS_DESC"
	EventHSDescContent       EventKind = "HS_DESC_CONTENT"
	EventNetworkLiveness     EventKind = "NETWORK_LIVENESS"
)

// multiLine lists the event kinds whose payload is carried in a dot-stuffed
// block on the wire, per control-spec.
var multiLine = map[EventKind]bool{
	EventNS:            true,
	EventNewConsensus:  true,
	EventHSDescContent: true,
}

// IsMultiLine reports whether kind's payload uses the '+'/'.' block form.
func IsMultiLine(kind EventKind) bool {
	return multiLine[kind]
}

// known is the closed set of recognized event kinds; ParseEventKind uses it
// to tell a real event from an unrecognized tag, which the Event Router
// silently drops per spec.
var known = map[EventKind]bool{
	EventCirc: true, EventStream: true, EventOrConn: true, EventBW: true,
	EventDebug: true, EventInfo: true, EventNotice: true, EventWarn: true,
	EventErr: true, EventNewDesc: true, EventAddrMap: true, EventDescChanged: true,
	EventStatusGeneral: true, EventStatusClient: true, EventStatusServer: true,
	EventGuard: true, EventNS: true, EventStreamBW: true, EventClientsSeen: true,
	EventNewConsensus: true, EventBuildTimeoutSet: true, EventSignal: true,
	EventConfChanged: true, EventCircMinor: true, EventTransportLaunched: true,
	EventConnBW: true, EventCircBW: true, EventCellStats: true, EventHSDesc: true,
	EventHSDescContent: true, EventNetworkLiveness: true,
}

// ParseEventKind resolves the first token of an async reply's message to an
// EventKind. ok is false for a tag the enumeration does not recognize.
func ParseEventKind(token string) (kind EventKind, ok bool) {
	k := EventKind(token)
	return k, known[k]
}
