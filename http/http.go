// Package http implements redirect resolution, session login and sitemap
// discovery over net/http.
package http

import (
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/bkayser/concierge"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout is the per-request timeout for all network calls.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewSession returns an unauthenticated session with an empty cookie jar.
func NewSession(userAgent string) (*concierge.Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &concierge.Session{Jar: jar, UserAgent: userAgent}, nil
}

// userAgentFor prefers the session's user agent over the fallback.
func userAgentFor(s *concierge.Session, fallback string) string {
	if s != nil && s.UserAgent != "" {
		return s.UserAgent
	}
	return fallback
}

// isRedirect reports whether code is a redirect status that carries a
// Location header.
func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
