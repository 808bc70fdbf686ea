package callflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxkit/voxconsole/internal/logquery"
)

func sipEvent(id int64, event, raw string) *logquery.EventLogRecord {
	return &logquery.EventLogRecord{
		ID:            id,
		Event:         event,
		EventType:     "sip_event",
		EventDatetime: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Second),
		Sip:           &logquery.SipInfo{Sip: raw},
	}
}

func TestParseSipMessageResponse(t *testing.T) {
	raw := "SIP/2.0 200 OK\r\nFrom: <sip:a@x>\r\nTo: <sip:b@y>\r\nCall-ID: abc123\r\n"
	msg := ParseSipMessage(sipEvent(1, "sip-in", raw))
	require.NotNil(t, msg)

	assert.Equal(t, 200, msg.Status)
	assert.Equal(t, "OK", msg.StatusText)
	assert.Empty(t, msg.Method)
	assert.False(t, msg.IsRequest())
	assert.Equal(t, "sip:a@x", msg.From)
	assert.Equal(t, "sip:b@y", msg.To)
	assert.Equal(t, "abc123", msg.CallID)
	assert.Equal(t, DirectionIn, msg.Direction)
	assert.Equal(t, "200 OK", msg.Label())
}

func TestParseSipMessageRequest(t *testing.T) {
	raw := "INVITE sip:b@y SIP/2.0\r\nFrom: Alice <sip:a@x>;tag=77\r\nTo: <sip:b@y>\r\n"
	msg := ParseSipMessage(sipEvent(2, "sip-out", raw))
	require.NotNil(t, msg)

	assert.Equal(t, "INVITE", msg.Method)
	assert.Zero(t, msg.Status)
	assert.True(t, msg.IsRequest())
	assert.Equal(t, DirectionOut, msg.Direction)
	assert.Equal(t, "sip:a@x", msg.From)
}

func TestParseSipMessageMethodStatusExclusive(t *testing.T) {
	for _, raw := range []string{
		"SIP/2.0 180 Ringing\r\n",
		"SIP/2.0 486 Busy Here\r\n",
		"BYE sip:b@y SIP/2.0\r\n",
		"ACK sip:b@y SIP/2.0\r\n",
	} {
		msg := ParseSipMessage(sipEvent(3, "sip-in", raw))
		require.NotNil(t, msg, raw)
		assert.True(t, (msg.Method != "") != (msg.Status != 0), raw)
	}
}

func TestParseSipMessageNilWithoutSipText(t *testing.T) {
	assert.Nil(t, ParseSipMessage(nil))
	assert.Nil(t, ParseSipMessage(&logquery.EventLogRecord{ID: 4}))
	assert.Nil(t, ParseSipMessage(&logquery.EventLogRecord{ID: 5, Sip: &logquery.SipInfo{}}))
}

func TestParseSipMessageGarbageStartLineFails(t *testing.T) {
	// Uninterpretable start lines are a hard parse failure, not an
	// "Unknown" request.
	assert.Nil(t, ParseSipMessage(sipEvent(6, "sip-in", "\r\n\r\n")))
	assert.Nil(t, ParseSipMessage(sipEvent(7, "sip-in", "SIP/2.0 notanumber OK\r\n")))
	assert.Nil(t, ParseSipMessage(sipEvent(8, "sip-in", "SIP/2.0\r\n")))
}

func TestParseSipMessageBareSipToken(t *testing.T) {
	raw := "INVITE sip:b@y SIP/2.0\r\nFrom: sip:a@x;tag=9\r\nTo: sip:b@y\r\n"
	msg := ParseSipMessage(sipEvent(9, "sip-out", raw))
	require.NotNil(t, msg)
	assert.Equal(t, "sip:a@x", msg.From)
	assert.Equal(t, "sip:b@y", msg.To)
}

func TestParseSipMessageCallIDFromEnvelope(t *testing.T) {
	event := sipEvent(10, "sip-in", "SIP/2.0 200 OK\r\nCall-ID: header-id\r\n")
	event.Sip.CallID = "envelope-id"
	msg := ParseSipMessage(event)
	require.NotNil(t, msg)
	assert.Equal(t, "envelope-id", msg.CallID)
}

func TestParseSipMessageMissingHeadersDefaultEmpty(t *testing.T) {
	msg := ParseSipMessage(sipEvent(11, "sip-out", "OPTIONS sip:b@y SIP/2.0\r\n"))
	require.NotNil(t, msg)
	assert.Empty(t, msg.From)
	assert.Empty(t, msg.To)
}
