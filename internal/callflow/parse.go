package callflow

import (
	"strconv"
	"strings"
	"time"

	"github.com/voxkit/voxconsole/internal/logquery"
)

// Direction marks which way a SIP message traveled relative to the PBX.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// ParsedSipMessage is the structured form of one raw SIP message. Exactly one
// of Method / Status is set on a successfully parsed message.
type ParsedSipMessage struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Direction  Direction `json:"direction"`
	Method     string    `json:"method,omitempty"`
	Status     int       `json:"status,omitempty"`
	StatusText string    `json:"statusText,omitempty"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	CallID     string    `json:"callId"`
	Raw        string    `json:"raw"`

	Event *logquery.EventLogRecord `json:"-"`
}

// IsRequest reports whether the message is a SIP request.
func (m *ParsedSipMessage) IsRequest() bool {
	return m.Method != ""
}

// Label is the short display form: the method for requests, "code text" for responses.
func (m *ParsedSipMessage) Label() string {
	if m.IsRequest() {
		return m.Method
	}
	if m.StatusText == "" {
		return strconv.Itoa(m.Status)
	}
	return strconv.Itoa(m.Status) + " " + m.StatusText
}

const statusLinePrefix = "SIP/2.0"

// ParseSipMessage turns an event's raw SIP text into a message descriptor.
// Events without SIP text, and events whose start line is uninterpretable,
// yield nil; callers drop such records rather than surfacing an error.
func ParseSipMessage(event *logquery.EventLogRecord) *ParsedSipMessage {
	if event == nil || event.Sip == nil || event.Sip.Sip == "" {
		return nil
	}

	raw := event.Sip.Sip
	lines := splitLines(raw)
	if len(lines) == 0 {
		return nil
	}

	msg := &ParsedSipMessage{
		ID:        event.ID,
		Timestamp: event.EventDatetime,
		Direction: DirectionOut,
		Raw:       raw,
		Event:     event,
	}
	if event.IsInbound() {
		msg.Direction = DirectionIn
	}

	startLine := strings.TrimSpace(lines[0])
	if strings.HasPrefix(startLine, statusLinePrefix) {
		// Response: "SIP/2.0 <code> <reason ...>"
		tokens := strings.Fields(startLine)
		if len(tokens) < 2 {
			return nil
		}
		code, err := strconv.Atoi(tokens[1])
		if err != nil {
			return nil
		}
		msg.Status = code
		msg.StatusText = strings.Join(tokens[2:], " ")
	} else {
		// Request: "<METHOD> <request-uri> SIP/2.0"
		tokens := strings.Fields(startLine)
		if len(tokens) == 0 {
			return nil
		}
		msg.Method = tokens[0]
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "From:") {
			msg.From = extractEndpoint(line)
		} else if strings.HasPrefix(line, "To:") {
			msg.To = extractEndpoint(line)
		}
	}

	msg.CallID = resolveCallID(event, lines)
	return msg
}

// splitLines tolerates CRLF and bare LF line endings.
func splitLines(raw string) []string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// extractEndpoint pulls the URI out of a From/To header line: the
// angle-bracket form wins, then a bare sip: token; otherwise empty.
func extractEndpoint(line string) string {
	if open := strings.Index(line, "<"); open >= 0 {
		if close := strings.Index(line[open:], ">"); close > 0 {
			return line[open+1 : open+close]
		}
	}
	for _, token := range strings.Fields(line) {
		if strings.HasPrefix(token, "sip:") || strings.HasPrefix(token, "sips:") {
			// Header parameters after the URI are not part of the endpoint.
			if idx := strings.IndexAny(token, ";,"); idx >= 0 {
				token = token[:idx]
			}
			return token
		}
	}
	return ""
}

// resolveCallID prefers the envelope's call-id over the Call-ID header.
func resolveCallID(event *logquery.EventLogRecord, lines []string) string {
	if event.Sip != nil && event.Sip.CallID != "" {
		return event.Sip.CallID
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "Call-ID:") {
			if idx := strings.Index(line, ":"); idx >= 0 {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}
