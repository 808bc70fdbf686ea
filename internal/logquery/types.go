package logquery

import (
	"time"
)

// CallLogRecord is one phone call attempt as reported by the log backend.
// Records are read-only: the console never mutates or deletes them.
type CallLogRecord struct {
	CallID     string     `json:"call_id"`
	StartAt    time.Time  `json:"start_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"` // nil means the call was never answered
	EndAt      *time.Time `json:"end_at,omitempty"`

	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	AppType       string `json:"app_type,omitempty"`
	BundleID      string `json:"bundle_id,omitempty"`
	AppIdentifier string `json:"app_identifier,omitempty"`
}

// WasAccepted reports whether the call was answered.
func (r *CallLogRecord) WasAccepted() bool {
	return r.AcceptedAt != nil
}

// Duration returns the talk time in whole seconds, or nil when the call was
// never answered or never ended.
func (r *CallLogRecord) Duration() *int {
	if r.AcceptedAt == nil || r.EndAt == nil {
		return nil
	}
	d := int(r.EndAt.Sub(*r.AcceptedAt).Seconds())
	return &d
}

// SipInfo is the SIP payload attached to a signaling event.
type SipInfo struct {
	CallID string `json:"call_id,omitempty"`
	Sip    string `json:"sip,omitempty"` // raw SIP message text
}

// PeerConnectionInfo is the WebRTC peer-connection payload of an event.
type PeerConnectionInfo struct {
	ConnectionState string `json:"connection_state,omitempty"`
}

// EventLogRecord is one signaling/transport event belonging to zero or one call.
// The backend represents event families as one wide optional-everything object;
// Kind() recovers the discriminant.
type EventLogRecord struct {
	ID    int64  `json:"id"`
	Event string `json:"event,omitempty"` // direction tag, e.g. "sip-in" / "sip-out"

	EventType string `json:"event_type,omitempty"` // "webrtc_event", "jsep_event", ...
	CallID    string `json:"call_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	HandleID  string `json:"handle_id,omitempty"`

	Sip            *SipInfo            `json:"sip,omitempty"`
	PeerConnection *PeerConnectionInfo `json:"peer_connection,omitempty"`
	Subtype        string              `json:"subtype,omitempty"`

	// JSEP payload
	SDP   string `json:"sdp,omitempty"`
	Type  string `json:"type,omitempty"` // "offer" / "answer"
	Owner string `json:"owner,omitempty"`

	// ICE / DTLS payload
	LocalCandidate  string                 `json:"local_candidate,omitempty"`
	RemoteCandidate string                 `json:"remote_candidate,omitempty"`
	SelectedPair    string                 `json:"selected_pair,omitempty"`
	DTLS            map[string]interface{} `json:"dtls,omitempty"`

	Data map[string]interface{} `json:"data,omitempty"`

	EventDatetime time.Time  `json:"event_datetime"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
}

// EventKind is the event family discriminant.
type EventKind int

const (
	KindGeneric EventKind = iota
	KindSip
	KindWebRTC
	KindJsep
)

// Kind classifies the event family: presence of raw SIP text wins, then event_type.
func (e *EventLogRecord) Kind() EventKind {
	if e.Sip != nil && e.Sip.Sip != "" {
		return KindSip
	}
	switch e.EventType {
	case "webrtc_event":
		return KindWebRTC
	case "jsep_event":
		return KindJsep
	}
	return KindGeneric
}

// SipCallID returns the best call-id correlation key for the event.
func (e *EventLogRecord) SipCallID() string {
	if e.Sip != nil && e.Sip.CallID != "" {
		return e.Sip.CallID
	}
	return e.CallID
}

// IsInbound reports whether the event's direction tag marks an inbound SIP message.
func (e *EventLogRecord) IsInbound() bool {
	return e.Event == "sip-in"
}
