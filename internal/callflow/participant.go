package callflow

import (
	"strings"

	"github.com/emiago/sipgo/sip"
)

// shortenParticipant reduces a SIP URI to "user@host" for lifeline headers.
// Non-URI strings pass through unchanged.
func shortenParticipant(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "Unknown" {
		return "Unknown"
	}
	if !strings.HasPrefix(s, "sip:") && !strings.HasPrefix(s, "sips:") {
		return s
	}
	var uri sip.Uri
	if err := sip.ParseUri(s, &uri); err != nil {
		return s
	}
	if uri.User == "" {
		return uri.Host
	}
	return uri.User + "@" + uri.Host
}
