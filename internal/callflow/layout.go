package callflow

import (
	"sort"

	"github.com/voxkit/voxconsole/internal/logquery"
)

// Fixed geometry constants for the sequence diagram, in pixels.
const (
	slotSpacing      = 200.0
	leftMargin       = 100.0
	topMargin        = 60.0
	rowHeight        = 40.0
	lifelineHeadH    = 36.0
	bottomPadding    = 30.0
	minDiagramWidth  = 320.0
	minDiagramHeight = 160.0
)

// Lifeline is one participant column.
type Lifeline struct {
	Label string  `json:"label"`
	Short string  `json:"short"`
	X     float64 `json:"x"`
}

// Arrow is one rendered message row.
type Arrow struct {
	EventID   int64     `json:"eventId"`
	Row       int       `json:"row"`
	Y         float64   `json:"y"`
	TailX     float64   `json:"tailX"`
	HeadX     float64   `json:"headX"`
	Label     string    `json:"label"`
	Color     ColorTag  `json:"color"`
	Direction Direction `json:"direction"`
}

// DiagramGeometry is the fully computed sequence diagram for one call.
type DiagramGeometry struct {
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Lifelines []Lifeline `json:"lifelines"`
	Arrows    []Arrow    `json:"arrows"`

	// Messages holds the filtered, time-sorted input so callers can map an
	// arrow's EventID back to the originating record.
	Messages []*ParsedSipMessage `json:"-"`
}

// FilterByCallID keeps only messages whose call-id equals the selected one.
// An empty selection keeps everything.
func FilterByCallID(messages []*ParsedSipMessage, callID string) []*ParsedSipMessage {
	if callID == "" {
		return messages
	}
	out := make([]*ParsedSipMessage, 0, len(messages))
	for _, m := range messages {
		if m.CallID == callID {
			out = append(out, m)
		}
	}
	return out
}

// SortByTime orders messages ascending by timestamp. Log arrival order is not
// trusted; the timestamp is the single temporal truth for the diagram.
func SortByTime(messages []*ParsedSipMessage) []*ParsedSipMessage {
	sorted := make([]*ParsedSipMessage, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// Participants collects the distinct from/to endpoints across the messages,
// in order of first appearance. Empty endpoints are kept as a shared
// "Unknown" slot so one-sided messages still render.
func Participants(messages []*ParsedSipMessage) []string {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if p == "" {
			p = "Unknown"
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, m := range messages {
		add(m.From)
		add(m.To)
	}
	return out
}

// Layout computes diagram geometry for already filtered and sorted messages
// against a fixed participant set. A message referencing a participant
// outside the set is skipped; its row stays empty rather than failing the
// whole diagram.
func Layout(messages []*ParsedSipMessage, participants []string) DiagramGeometry {
	slot := make(map[string]int, len(participants))
	lifelines := make([]Lifeline, 0, len(participants))
	for i, p := range participants {
		slot[p] = i
		lifelines = append(lifelines, Lifeline{
			Label: p,
			Short: shortenParticipant(p),
			X:     leftMargin + float64(i)*slotSpacing,
		})
	}

	geo := DiagramGeometry{
		Lifelines: lifelines,
		Messages:  messages,
	}

	for idx, m := range messages {
		from := m.From
		if from == "" {
			from = "Unknown"
		}
		to := m.To
		if to == "" {
			to = "Unknown"
		}
		fromIdx, okFrom := slot[from]
		toIdx, okTo := slot[to]
		if !okFrom || !okTo {
			continue
		}

		fromX := lifelines[fromIdx].X
		toX := lifelines[toIdx].X
		arrow := Arrow{
			EventID:   m.ID,
			Row:       idx,
			Y:         topMargin + float64(idx)*rowHeight,
			Label:     m.Label(),
			Color:     colorForMessage(m),
			Direction: m.Direction,
		}
		// The head sits where the message arrived: at the destination slot
		// for outbound messages, at the origin slot for inbound ones.
		if m.Direction == DirectionIn {
			arrow.TailX = toX
			arrow.HeadX = fromX
		} else {
			arrow.TailX = fromX
			arrow.HeadX = toX
		}
		geo.Arrows = append(geo.Arrows, arrow)
	}

	geo.Width = leftMargin + float64(len(participants))*slotSpacing
	if geo.Width < minDiagramWidth {
		geo.Width = minDiagramWidth
	}
	geo.Height = topMargin + float64(len(messages))*rowHeight + bottomPadding
	if geo.Height < minDiagramHeight {
		geo.Height = minDiagramHeight
	}
	return geo
}

// BuildDiagram is the full pipeline: parse every event, isolate the selected
// call, sort by time, discover participants and lay the messages out.
func BuildDiagram(events []logquery.EventLogRecord, selectedCallID string) DiagramGeometry {
	messages := make([]*ParsedSipMessage, 0, len(events))
	for i := range events {
		if msg := ParseSipMessage(&events[i]); msg != nil {
			messages = append(messages, msg)
		}
	}
	messages = SortByTime(FilterByCallID(messages, selectedCallID))
	return Layout(messages, Participants(messages))
}
