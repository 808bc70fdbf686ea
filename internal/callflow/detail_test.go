package callflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxkit/voxconsole/internal/logquery"
)

const testSDP = "v=0\r\n" +
	"o=- 123456 2 IN IP4 192.0.2.10\r\n" +
	"s=call\r\n" +
	"t=0 0\r\n" +
	"m=audio 49170 RTP/AVP 0 8\r\n" +
	"a=sendrecv\r\n"

func TestBuildDetailCardsPreservesInputOrder(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []logquery.EventLogRecord{
		{ID: 30, EventType: "jsep_event", Type: "answer", EventDatetime: base.Add(time.Minute)},
		{ID: 10, EventType: "webrtc_event", Subtype: "ice_done", EventDatetime: base},
		{ID: 20, Event: "keepalive", EventDatetime: base.Add(time.Second)},
	}

	cards := BuildDetailCards(events, PanelState{})
	require.Len(t, cards, 3)
	// Input order, not timestamp order.
	assert.Equal(t, int64(30), cards[0].EventID)
	assert.Equal(t, int64(10), cards[1].EventID)
	assert.Equal(t, int64(20), cards[2].EventID)
}

func TestBuildDetailCardsConditionalSections(t *testing.T) {
	event := logquery.EventLogRecord{
		ID:        1,
		EventType: "sip_event",
		Sip:       &logquery.SipInfo{CallID: "c1", Sip: "INVITE sip:b@y SIP/2.0\r\nFrom: <sip:a@x>\r\nTo: <sip:b@y>\r\n"},
		SDP:       testSDP,
		LocalCandidate: "candidate:1 1 udp 2122260223 192.0.2.10 49170 typ host",
	}

	cards := BuildDetailCards([]logquery.EventLogRecord{event}, PanelState{
		Expanded: map[int64]bool{1: true},
	})
	require.Len(t, cards, 1)

	titles := make([]string, 0, len(cards[0].Sections))
	for _, section := range cards[0].Sections {
		titles = append(titles, section.Title)
	}
	assert.Equal(t, []string{"SIP", "SDP", "ICE"}, titles)
}

func TestBuildDetailCardsOmitsAbsentSections(t *testing.T) {
	event := logquery.EventLogRecord{ID: 2, Event: "keepalive"}
	cards := BuildDetailCards([]logquery.EventLogRecord{event}, PanelState{
		Expanded: map[int64]bool{2: true},
	})
	require.Len(t, cards, 1)
	assert.Empty(t, cards[0].Sections)
}

func TestBuildDetailCardsCollapsedHasNoSections(t *testing.T) {
	event := logquery.EventLogRecord{ID: 3, SDP: testSDP}
	cards := BuildDetailCards([]logquery.EventLogRecord{event}, PanelState{})
	require.Len(t, cards, 1)
	assert.False(t, cards[0].Expanded)
	assert.Empty(t, cards[0].Sections)
	assert.Empty(t, cards[0].RawJSON)
}

func TestBuildDetailCardsSelectionForcesExpand(t *testing.T) {
	event := logquery.EventLogRecord{ID: 4, SDP: testSDP}
	cards := BuildDetailCards([]logquery.EventLogRecord{event}, PanelState{
		SelectedID:  4,
		HasSelected: true,
	})
	require.Len(t, cards, 1)
	assert.True(t, cards[0].Selected)
	assert.True(t, cards[0].Expanded)
	require.NotEmpty(t, cards[0].Sections)
	assert.Equal(t, "SDP", cards[0].Sections[0].Title)
}

func TestSummarizeSDP(t *testing.T) {
	lines := summarizeSDP(testSDP)
	assert.Contains(t, lines, "Session: call")
	assert.Contains(t, lines, "Media: audio port 49170 RTP/AVP (2 formats)")
	assert.Contains(t, lines, "  Direction: sendrecv")
}

func TestSummarizeSDPFallsBackToRaw(t *testing.T) {
	lines := summarizeSDP("not an sdp body")
	assert.Equal(t, []string{"not an sdp body"}, lines)
}

func TestHumanizeRawJSON(t *testing.T) {
	event := &logquery.EventLogRecord{
		ID:  5,
		Sip: &logquery.SipInfo{CallID: "c", Sip: "SIP/2.0 200 OK\r\nVia: x\r\n"},
	}
	out := HumanizeRawJSON(event)
	assert.NotContains(t, out, `\r\n`)
	assert.Contains(t, out, "SIP/2.0 200 OK\nVia: x\n")
	// The record itself is untouched.
	assert.Contains(t, event.Sip.Sip, "\r\n")
}
