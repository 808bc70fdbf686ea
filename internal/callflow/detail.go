package callflow

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pion/sdp/v3"

	"github.com/voxkit/voxconsole/internal/logquery"
)

// DetailSection is one conditionally present block inside a card.
type DetailSection struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// DetailCard is the expandable summary of one event record. Cards keep the
// caller's input order; the panel never re-sorts.
type DetailCard struct {
	EventID     int64           `json:"eventId"`
	Timestamp   time.Time       `json:"timestamp"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Color       ColorTag        `json:"color"`
	Expanded    bool            `json:"expanded"`
	RawExpanded bool            `json:"rawExpanded"`
	Selected    bool            `json:"selected"`
	Sections    []DetailSection `json:"sections,omitempty"`
	RawJSON     string          `json:"rawJson,omitempty"`
}

// PanelState carries the externally owned per-card toggles.
type PanelState struct {
	Expanded    map[int64]bool
	RawExpanded map[int64]bool
	SelectedID  int64
	HasSelected bool
}

// BuildDetailCards renders one card per event in input order. Sections appear
// only for fields actually present on the record; the selected card is
// force-expanded regardless of its toggle.
func BuildDetailCards(events []logquery.EventLogRecord, state PanelState) []DetailCard {
	cards := make([]DetailCard, 0, len(events))
	for i := range events {
		event := &events[i]
		cls := Classify(event)

		card := DetailCard{
			EventID:   event.ID,
			Timestamp: event.EventDatetime,
			Type:      cls.Type,
			Status:    cls.Status,
			Color:     cls.Color,
			Expanded:  state.Expanded[event.ID],
			Selected:  state.HasSelected && state.SelectedID == event.ID,
		}
		if card.Selected {
			card.Expanded = true
		}
		if card.Expanded {
			card.Sections = buildSections(event)
			card.RawExpanded = state.RawExpanded[event.ID]
			if card.RawExpanded {
				card.RawJSON = HumanizeRawJSON(event)
			}
		}
		cards = append(cards, card)
	}
	return cards
}

func buildSections(event *logquery.EventLogRecord) []DetailSection {
	var sections []DetailSection

	if event.Sip != nil && event.Sip.Sip != "" {
		lines := []string{}
		if msg := ParseSipMessage(event); msg != nil {
			if msg.IsRequest() {
				lines = append(lines, "Method: "+msg.Method)
			} else {
				lines = append(lines, fmt.Sprintf("Status: %d %s", msg.Status, msg.StatusText))
			}
			lines = append(lines,
				"From: "+orUnknown(msg.From),
				"To: "+orUnknown(msg.To),
				"Call-ID: "+orUnknown(msg.CallID),
			)
		}
		lines = append(lines, splitLines(event.Sip.Sip)...)
		sections = append(sections, DetailSection{Title: "SIP", Lines: lines})
	}

	if event.SDP != "" {
		sections = append(sections, DetailSection{Title: "SDP", Lines: summarizeSDP(event.SDP)})
	}

	if event.LocalCandidate != "" || event.RemoteCandidate != "" || event.SelectedPair != "" {
		var lines []string
		if event.LocalCandidate != "" {
			lines = append(lines, "Local: "+event.LocalCandidate)
		}
		if event.RemoteCandidate != "" {
			lines = append(lines, "Remote: "+event.RemoteCandidate)
		}
		if event.SelectedPair != "" {
			lines = append(lines, "Selected pair: "+event.SelectedPair)
		}
		sections = append(sections, DetailSection{Title: "ICE", Lines: lines})
	}

	if len(event.DTLS) > 0 {
		sections = append(sections, DetailSection{Title: "DTLS", Lines: mapLines(event.DTLS)})
	}

	if event.PeerConnection != nil && event.PeerConnection.ConnectionState != "" {
		sections = append(sections, DetailSection{
			Title: "Peer Connection",
			Lines: []string{"State: " + event.PeerConnection.ConnectionState},
		})
	}

	if len(event.Data) > 0 {
		sections = append(sections, DetailSection{Title: "Data", Lines: mapLines(event.Data)})
	}

	return sections
}

// summarizeSDP condenses an SDP body into a few readable lines. A body the
// parser rejects is shown raw instead of being dropped.
func summarizeSDP(body string) []string {
	var desc sdp.SessionDescription
	if err := desc.Unmarshal([]byte(body)); err != nil {
		return splitLines(body)
	}
	lines := []string{}
	if desc.SessionName != "" {
		lines = append(lines, "Session: "+string(desc.SessionName))
	}
	lines = append(lines, "Origin: "+desc.Origin.Username+" "+desc.Origin.UnicastAddress)
	for _, media := range desc.MediaDescriptions {
		lines = append(lines, fmt.Sprintf("Media: %s port %d %s (%d formats)",
			media.MediaName.Media,
			media.MediaName.Port.Value,
			strings.Join(media.MediaName.Protos, "/"),
			len(media.MediaName.Formats)))
		if dir := mediaDirection(media); dir != "" {
			lines = append(lines, "  Direction: "+dir)
		}
	}
	return lines
}

func mediaDirection(media *sdp.MediaDescription) string {
	for _, attr := range media.Attributes {
		switch attr.Key {
		case "sendrecv", "sendonly", "recvonly", "inactive":
			return attr.Key
		}
	}
	return ""
}

func mapLines(m map[string]interface{}) []string {
	lines := make([]string, 0, len(m))
	for key, value := range m {
		lines = append(lines, fmt.Sprintf("%s: %v", key, value))
	}
	return lines
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// HumanizeRawJSON serializes the whole record for display, rewriting escaped
// CRLF sequences inside embedded SIP text into real line breaks. Display
// only; the underlying record is untouched.
func HumanizeRawJSON(event *logquery.EventLogRecord) string {
	raw, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(string(raw), `\r\n`, "\n")
}
