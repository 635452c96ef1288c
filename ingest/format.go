package ingest

import (
	"fmt"
	"net/url"
)

// TruncateURL shortens a URL for progress lines. It shows the path, keeping
// the end which is more informative when many URLs share a host.
func TruncateURL(rawURL string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	s := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		s = u.Path
		if u.RawQuery != "" {
			s += "?" + u.RawQuery
		}
		if s == "" {
			s = "/"
		}
	}

	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return "..." + s[len(s)-maxLen+3:]
}

// FormatTokens formats a token count in human-readable form.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}
