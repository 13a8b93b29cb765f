package useragent

import (
	"strings"

	"github.com/storefront/backend/internal/application/workcontext"
)

// crawlerMarkers are substrings that identify well-known crawlers and
// generic automation clients. Matching is case-insensitive.
var crawlerMarkers = []string{
	"googlebot",
	"bingbot",
	"slurp",
	"duckduckbot",
	"baiduspider",
	"yandexbot",
	"applebot",
	"facebookexternalhit",
	"twitterbot",
	"linkedinbot",
	"semrushbot",
	"ahrefsbot",
	"petalbot",
	"bot/",
	"crawler",
	"spider",
	"curl/",
	"wget/",
	"python-requests",
	"headlesschrome",
}

// Inspector classifies clients from the User-Agent header
type Inspector struct{}

// NewInspector creates a new user agent inspector
func NewInspector() *Inspector {
	return &Inspector{}
}

// IsBot reports whether the user agent belongs to a known crawler. An
// empty user agent is not treated as a bot; those clients go through the
// regular guest path where overload policy applies.
func (i *Inspector) IsBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, marker := range crawlerMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// DeviceLabel returns a coarse device class for telemetry, or empty when
// the user agent gives no usable signal.
func (i *Inspector) DeviceLabel(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobi") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	case strings.Contains(ua, "mozilla") || strings.Contains(ua, "opera"):
		return "desktop"
	default:
		return ""
	}
}

var _ workcontext.UserAgentInspector = (*Inspector)(nil)
