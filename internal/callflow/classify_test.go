package callflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/voxkit/voxconsole/internal/logquery"
)

func TestClassifySipResponseColors(t *testing.T) {
	cases := []struct {
		raw   string
		color ColorTag
	}{
		{"SIP/2.0 200 OK\r\n", ColorGreen},
		{"SIP/2.0 202 Accepted\r\n", ColorGreen},
		{"SIP/2.0 404 Not Found\r\n", ColorRed},
		{"SIP/2.0 503 Service Unavailable\r\n", ColorRed},
		{"SIP/2.0 180 Ringing\r\n", ColorBlue},
		{"SIP/2.0 302 Moved Temporarily\r\n", ColorGray},
	}
	for _, tc := range cases {
		cls := Classify(sipEvent(1, "sip-in", tc.raw))
		assert.Equal(t, "SIP", cls.Type, tc.raw)
		assert.Equal(t, tc.color, cls.Color, tc.raw)
	}
}

func TestClassifySipRequestColors(t *testing.T) {
	cases := []struct {
		method string
		color  ColorTag
	}{
		{"INVITE", ColorPurple},
		{"BYE", ColorOrange},
		{"ACK", ColorCyan},
		{"REGISTER", ColorGray},
	}
	for _, tc := range cases {
		cls := Classify(sipEvent(1, "sip-out", tc.method+" sip:b@y SIP/2.0\r\n"))
		assert.Equal(t, tc.method, cls.Status)
		assert.Equal(t, tc.color, cls.Color)
	}
}

func TestClassifyWebRTC(t *testing.T) {
	event := &logquery.EventLogRecord{
		EventType:      "webrtc_event",
		PeerConnection: &logquery.PeerConnectionInfo{ConnectionState: "connected"},
	}
	cls := Classify(event)
	assert.Equal(t, "WebRTC", cls.Type)
	assert.Equal(t, "Peer Connection: connected", cls.Status)
	assert.Equal(t, ColorGreen, cls.Color)

	// Terminal failure states bucket red alongside hangup.
	for _, state := range []string{"hangup", "closed", "failed"} {
		event.PeerConnection.ConnectionState = state
		assert.Equal(t, ColorRed, Classify(event).Color, state)
	}

	event.PeerConnection.ConnectionState = "checking"
	assert.Equal(t, ColorBlue, Classify(event).Color)
}

func TestClassifyWebRTCSubtype(t *testing.T) {
	event := &logquery.EventLogRecord{
		EventType: "webrtc_event",
		Subtype:   "ice_gathering_complete",
	}
	cls := Classify(event)
	assert.Equal(t, "ice gathering complete", cls.Status)
	assert.Equal(t, ColorBlue, cls.Color)
}

func TestClassifyJsep(t *testing.T) {
	event := &logquery.EventLogRecord{EventType: "jsep_event", Type: "offer", Owner: "local"}
	cls := Classify(event)
	assert.Equal(t, "JSEP", cls.Type)
	assert.Equal(t, "OFFER (local)", cls.Status)
	assert.Equal(t, ColorPurple, cls.Color)

	event = &logquery.EventLogRecord{EventType: "jsep_event", Type: "answer"}
	cls = Classify(event)
	assert.Equal(t, "ANSWER", cls.Status)
	assert.Equal(t, ColorGreen, cls.Color)

	event = &logquery.EventLogRecord{EventType: "jsep_event"}
	cls = Classify(event)
	assert.Equal(t, "SDP", cls.Status)
	assert.Equal(t, ColorBlue, cls.Color)
}

func TestClassifyGenericFallback(t *testing.T) {
	cls := Classify(&logquery.EventLogRecord{Event: "keepalive"})
	assert.Equal(t, "Event", cls.Type)
	assert.Equal(t, "keepalive", cls.Status)
	assert.Equal(t, ColorGray, cls.Color)

	cls = Classify(&logquery.EventLogRecord{})
	assert.Equal(t, "Unknown", cls.Status)
}

func TestClassifyIdempotent(t *testing.T) {
	event := &logquery.EventLogRecord{
		EventType:     "jsep_event",
		Type:          "offer",
		Owner:         "remote",
		EventDatetime: time.Now(),
	}
	first := Classify(event)
	second := Classify(event)
	assert.Equal(t, first, second)
}
