// Package format turns timestamps and URLs into short display labels.
package format

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Unknown is shown when a value is absent.
const Unknown = "Unknown"

// InvalidURL is the domain label for URLs that cannot be parsed.
const InvalidURL = "Invalid URL"

// schemeLabels maps internal URL prefixes to fixed domain labels.
// Order matters: chrome-extension:// must be checked before chrome://.
var schemeLabels = []struct {
	prefix string
	label  string
}{
	{"chrome-extension://", "Extension"},
	{"moz-extension://", "Extension"},
	{"chrome://", "Chrome"},
	{"edge://", "Edge"},
	{"about:", "Browser"},
	{"file://", "Local File"},
	{"data:", "Data URL"},
}

// hostSchemes are the schemes whose URLs are invalid without a host.
var hostSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
}

// Domain returns the display domain for rawURL.
func Domain(rawURL string) string {
	if rawURL == "" {
		return Unknown
	}
	for _, s := range schemeLabels {
		if strings.HasPrefix(rawURL, s.prefix) {
			return s.label
		}
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return InvalidURL
	}
	if host := u.Hostname(); host != "" {
		return host
	}
	if hostSchemes[strings.ToLower(u.Scheme)] {
		return InvalidURL
	}
	return Unknown
}

// IsInternal reports whether rawURL uses one of the browser-internal schemes.
func IsInternal(rawURL string) bool {
	for _, s := range schemeLabels {
		if strings.HasPrefix(rawURL, s.prefix) {
			return true
		}
	}
	return false
}

// Idle formats an elapsed duration using its coarsest non-zero units.
//
//	Idle(5*time.Minute)   == "5m ago"
//	Idle(2*time.Hour)     == "2h ago"
//	Idle(26*time.Hour)    == "1d 2h ago"
func Idle(d time.Duration) string {
	minutes := int(d / time.Minute)
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		if h := hours % 24; h > 0 {
			return fmt.Sprintf("%dd %dh ago", days, h)
		}
		return fmt.Sprintf("%dd ago", days)
	case hours > 0:
		if m := minutes % 60; m > 0 {
			return fmt.Sprintf("%dh %dm ago", hours, m)
		}
		return fmt.Sprintf("%dh ago", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm ago", minutes)
	default:
		return "Just now"
	}
}

// IdleSince formats the time elapsed between t and now. A zero t is absent.
func IdleSince(t, now time.Time) string {
	if t.IsZero() {
		return Unknown
	}
	return Idle(now.Sub(t))
}
