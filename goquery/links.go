// Package goquery implements HTML inspection with goquery: login form
// discovery, client-side redirect detection and main-content extraction.
package goquery

import (
	"net/url"
	"strings"

	"github.com/bkayser/concierge"
)

// resolveURL resolves href against base and strips the fragment.
// Returns "" if href cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// isSameDomain reports whether both URLs belong to the same domain,
// ignoring a www. prefix.
func isSameDomain(a, b string) bool {
	d := concierge.Domain(a)
	return d != "" && d == concierge.Domain(b)
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
