package logquery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCallsBareArray(t *testing.T) {
	body := []byte(`[{"call_id":"c1","start_at":"2026-03-10T09:00:00Z","from":"sip:a@x","to":"sip:b@y"}]`)
	calls, err := NormalizeCalls(body)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "c1", calls[0].CallID)
	assert.Equal(t, "sip:a@x", calls[0].From)
}

func TestNormalizeCallsWrappedObject(t *testing.T) {
	body := []byte(`{"calls":[{"call_id":"c1","start_at":"2026-03-10T09:00:00Z"}]}`)
	calls, err := NormalizeCalls(body)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "c1", calls[0].CallID)
}

func TestNormalizeCallsStringWrapped(t *testing.T) {
	// Backend sometimes double-encodes the payload as a JSON string.
	body := []byte(`"{\"calls\":[{\"call_id\":\"c1\",\"start_at\":\"2026-03-10T09:00:00Z\"}]}"`)
	wrapped, err := NormalizeCalls(body)
	require.NoError(t, err)

	bare, err := NormalizeCalls([]byte(`[{"call_id":"c1","start_at":"2026-03-10T09:00:00Z"}]`))
	require.NoError(t, err)

	assert.Equal(t, bare, wrapped)
}

func TestNormalizeCallsWrongKey(t *testing.T) {
	_, err := NormalizeCalls([]byte(`{"events":[]}`))
	assert.Error(t, err)
}

func TestNormalizeEventsNestedPayloads(t *testing.T) {
	body := []byte(`{"events":[{
		"id": 42,
		"event": "sip-in",
		"event_type": "sip_event",
		"event_datetime": "2026-03-10T09:00:01Z",
		"sip": {"call_id":"c1","sip":"SIP/2.0 200 OK\r\n"},
		"peer_connection": {"connection_state":"connected"},
		"dtls": {"state":"connected"},
		"data": {"note":"x"}
	}]}`)
	events, err := NormalizeEvents(body)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, int64(42), event.ID)
	assert.True(t, event.IsInbound())
	require.NotNil(t, event.Sip)
	assert.Equal(t, "c1", event.Sip.CallID)
	assert.Equal(t, KindSip, event.Kind())
	require.NotNil(t, event.PeerConnection)
	assert.Equal(t, "connected", event.PeerConnection.ConnectionState)
	assert.Equal(t, "connected", event.DTLS["state"])
	assert.Equal(t, "x", event.Data["note"])
}

func TestNormalizeEventsEpochTimestamps(t *testing.T) {
	body := []byte(`[{"id":1,"event_datetime":1773133200},{"id":2,"event_datetime":1773133200500}]`)
	events, err := NormalizeEvents(body)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1773133200), events[0].EventDatetime.Unix())
	assert.Equal(t, int64(1773133200500), events[1].EventDatetime.UnixMilli())
}

func TestNormalizeEventsNullBody(t *testing.T) {
	events, err := NormalizeEvents([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestNormalizeGarbage(t *testing.T) {
	_, err := NormalizeEvents([]byte(`{{{`))
	assert.Error(t, err)
	_, err = NormalizeEvents([]byte(`42`))
	assert.Error(t, err)
}

func TestCallRecordDuration(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	accepted := start.Add(5 * time.Second)
	end := accepted.Add(65 * time.Second)

	rec := CallLogRecord{StartAt: start, AcceptedAt: &accepted, EndAt: &end}
	require.NotNil(t, rec.Duration())
	assert.Equal(t, 65, *rec.Duration())
	assert.True(t, rec.WasAccepted())

	// Never answered: no duration regardless of end_at.
	rec = CallLogRecord{StartAt: start, EndAt: &end}
	assert.Nil(t, rec.Duration())
	assert.False(t, rec.WasAccepted())

	// Accepted and ended at the same instant.
	rec = CallLogRecord{StartAt: start, AcceptedAt: &accepted, EndAt: &accepted}
	require.NotNil(t, rec.Duration())
	assert.Equal(t, 0, *rec.Duration())
}
