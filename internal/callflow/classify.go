package callflow

import (
	"strings"

	"github.com/voxkit/voxconsole/internal/logquery"
)

// ColorTag is the semantic display color of a classified event.
type ColorTag string

const (
	ColorGreen  ColorTag = "green"
	ColorRed    ColorTag = "red"
	ColorBlue   ColorTag = "blue"
	ColorGray   ColorTag = "gray"
	ColorPurple ColorTag = "purple"
	ColorOrange ColorTag = "orange"
	ColorCyan   ColorTag = "cyan"
)

// Classification is the display summary of one event log record.
type Classification struct {
	Type   string   `json:"type"`
	Status string   `json:"status"`
	Color  ColorTag `json:"color"`
}

// Classify summarizes an event for list display. It is a total function:
// every record gets a type, a status and a color, falling through to a
// generic bucket when nothing more specific applies. Classification reads
// the record and never mutates it.
func Classify(event *logquery.EventLogRecord) Classification {
	switch event.Kind() {
	case logquery.KindSip:
		if msg := ParseSipMessage(event); msg != nil {
			return Classification{
				Type:   "SIP",
				Status: msg.Label(),
				Color:  colorForMessage(msg),
			}
		}
		return Classification{Type: "SIP", Status: "Unparsed", Color: ColorGray}

	case logquery.KindWebRTC:
		if event.PeerConnection != nil && event.PeerConnection.ConnectionState != "" {
			state := event.PeerConnection.ConnectionState
			return Classification{
				Type:   "WebRTC",
				Status: "Peer Connection: " + state,
				Color:  colorForConnectionState(state),
			}
		}
		if event.Subtype != "" {
			return Classification{
				Type:   "WebRTC",
				Status: strings.ReplaceAll(event.Subtype, "_", " "),
				Color:  ColorBlue,
			}
		}
		return Classification{Type: "WebRTC", Status: "Event", Color: ColorBlue}

	case logquery.KindJsep:
		status := "SDP"
		color := ColorBlue
		switch strings.ToLower(event.Type) {
		case "offer":
			status = "OFFER"
			color = ColorPurple
		case "answer":
			status = "ANSWER"
			color = ColorGreen
		default:
			if event.Type != "" {
				status = strings.ToUpper(event.Type)
			}
		}
		if event.Owner != "" {
			status += " (" + event.Owner + ")"
		}
		return Classification{Type: "JSEP", Status: status, Color: color}
	}

	status := event.Event
	if status == "" {
		status = "Unknown"
	}
	return Classification{Type: "Event", Status: status, Color: ColorGray}
}

// colorForMessage buckets a parsed SIP message. Responses bucket by status
// class, requests by method.
func colorForMessage(msg *ParsedSipMessage) ColorTag {
	if msg.IsRequest() {
		return colorForMethod(msg.Method)
	}
	return colorForStatus(msg.Status)
}

func colorForStatus(code int) ColorTag {
	switch {
	case code >= 200 && code < 300:
		return ColorGreen
	case code >= 400:
		return ColorRed
	case code >= 100 && code < 200:
		return ColorBlue
	default:
		return ColorGray
	}
}

func colorForMethod(method string) ColorTag {
	switch method {
	case "INVITE":
		return ColorPurple
	case "BYE":
		return ColorOrange
	case "ACK":
		return ColorCyan
	default:
		return ColorGray
	}
}

func colorForConnectionState(state string) ColorTag {
	switch strings.ToLower(state) {
	case "connected":
		return ColorGreen
	case "hangup", "closed", "failed":
		return ColorRed
	default:
		return ColorBlue
	}
}
