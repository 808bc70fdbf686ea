package logquery

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// The log backend is inconsistent about response shape: a collection may
// arrive as a bare array, wrapped in an object under a type-specific key, or
// double-encoded as a JSON string containing either of those. Shape sniffing
// is confined to this file; callers only ever see flat record slices.

// NormalizeCalls decodes a call log response of any supported shape.
func NormalizeCalls(body []byte) ([]CallLogRecord, error) {
	items, err := unwrapCollection(body, "calls")
	if err != nil {
		return nil, err
	}
	records := make([]CallLogRecord, 0, len(items))
	for _, item := range items {
		records = append(records, callFromMap(item))
	}
	return records, nil
}

// NormalizeEvents decodes an event log response of any supported shape.
func NormalizeEvents(body []byte) ([]EventLogRecord, error) {
	items, err := unwrapCollection(body, "events")
	if err != nil {
		return nil, err
	}
	records := make([]EventLogRecord, 0, len(items))
	for _, item := range items {
		records = append(records, eventFromMap(item))
	}
	return records, nil
}

// unwrapCollection resolves the three backend shapes to a slice of raw objects.
func unwrapCollection(body []byte, key string) ([]map[string]interface{}, error) {
	var value interface{}
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("decode log response: %w", err)
	}

	// Double-encoded payload: a JSON string containing the real structure.
	if s, ok := value.(string); ok {
		if err := json.Unmarshal([]byte(s), &value); err != nil {
			return nil, fmt.Errorf("decode string-wrapped log response: %w", err)
		}
	}

	var raw []interface{}
	switch v := value.(type) {
	case []interface{}:
		raw = v
	case map[string]interface{}:
		inner, ok := v[key]
		if !ok {
			return nil, fmt.Errorf("log response object has no %q field", key)
		}
		raw, ok = inner.([]interface{})
		if !ok {
			return nil, fmt.Errorf("log response field %q is not an array", key)
		}
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported log response shape %T", value)
	}

	items := make([]map[string]interface{}, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]interface{}); ok {
			items = append(items, m)
		}
	}
	return items, nil
}

func callFromMap(m map[string]interface{}) CallLogRecord {
	return CallLogRecord{
		CallID:        cast.ToString(m["call_id"]),
		StartAt:       parseTime(m["start_at"]),
		AcceptedAt:    parseTimePtr(m["accepted_at"]),
		EndAt:         parseTimePtr(m["end_at"]),
		From:          cast.ToString(m["from"]),
		To:            cast.ToString(m["to"]),
		AppType:       cast.ToString(m["app_type"]),
		BundleID:      cast.ToString(m["bundle_id"]),
		AppIdentifier: cast.ToString(m["app_identifier"]),
	}
}

func eventFromMap(m map[string]interface{}) EventLogRecord {
	rec := EventLogRecord{
		ID:              cast.ToInt64(m["id"]),
		Event:           cast.ToString(m["event"]),
		EventType:       cast.ToString(m["event_type"]),
		CallID:          cast.ToString(m["call_id"]),
		SessionID:       cast.ToString(m["session_id"]),
		HandleID:        cast.ToString(m["handle_id"]),
		Subtype:         cast.ToString(m["subtype"]),
		SDP:             cast.ToString(m["sdp"]),
		Type:            cast.ToString(m["type"]),
		Owner:           cast.ToString(m["owner"]),
		LocalCandidate:  cast.ToString(m["local_candidate"]),
		RemoteCandidate: cast.ToString(m["remote_candidate"]),
		SelectedPair:    cast.ToString(m["selected_pair"]),
		EventDatetime:   parseTime(m["event_datetime"]),
		Timestamp:       parseTimePtr(m["timestamp"]),
	}

	if sip, ok := m["sip"].(map[string]interface{}); ok {
		rec.Sip = &SipInfo{
			CallID: cast.ToString(sip["call_id"]),
			Sip:    cast.ToString(sip["sip"]),
		}
	}
	if pc, ok := m["peer_connection"].(map[string]interface{}); ok {
		rec.PeerConnection = &PeerConnectionInfo{
			ConnectionState: cast.ToString(pc["connection_state"]),
		}
	}
	if dtls, ok := m["dtls"].(map[string]interface{}); ok {
		rec.DTLS = dtls
	}
	if data, ok := m["data"].(map[string]interface{}); ok {
		rec.Data = data
	}
	return rec
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTime(v interface{}) time.Time {
	s := cast.ToString(v)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	// Numeric epoch (seconds or milliseconds).
	if n := cast.ToInt64(v); n > 0 {
		if n > 1e12 {
			return time.UnixMilli(n)
		}
		return time.Unix(n, 0)
	}
	return time.Time{}
}

func parseTimePtr(v interface{}) *time.Time {
	if v == nil {
		return nil
	}
	t := parseTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}
