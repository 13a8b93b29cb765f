package workcontext

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Request is the transport-neutral view of an inbound request consumed by
// the resolution pipeline. The HTTP layer builds one per request.
type Request struct {
	IP             string
	UserAgent      string
	Host           string
	Path           string
	RequestedURL   string
	AcceptLanguage string // raw Accept-Language header value
	SchedulerToken string // caller token from the task-scheduler header
	RendererToken  string // caller token from the document-renderer header
	WebhookRoute   bool   // endpoint metadata marked this a webhook route
	VisitorToken   string // raw visitor-identification cookie value

	// SetVisitorCookie appends the visitor-identification token to the
	// outgoing response. May be nil for non-HTTP callers.
	SetVisitorCookie func(token string)
}

// Fingerprint derives the client fingerprint recognizing a returning
// anonymous visitor absent cookies.
func (r *Request) Fingerprint() string {
	sum := sha256.Sum256([]byte(r.IP + "|" + strings.ToLower(r.UserAgent)))
	return hex.EncodeToString(sum[:])
}

// SanitizeVisitedURL normalizes a last-visited URL for storage: trims
// whitespace, drops fragments and truncates to the field limit.
func SanitizeVisitedURL(raw string, max int) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, raw)
	return clip(raw, max)
}
