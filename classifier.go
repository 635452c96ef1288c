package concierge

import (
	"net/url"
	"strings"
)

// DefaultAuthDomain is the site that requires an authenticated session.
const DefaultAuthDomain = "reftown.com"

// DefaultRulesDomain publishes the authoritative Laws of the Game.
const DefaultRulesDomain = "theifab.com"

// Classifier decides which URLs need an authenticated session.
type Classifier struct {
	AuthDomain string
}

// NewClassifier returns a Classifier for the default authenticated domain.
func NewClassifier() *Classifier {
	return &Classifier{AuthDomain: DefaultAuthDomain}
}

// RequiresAuth reports whether rawURL's host, ignoring a www. prefix,
// equals the authenticated domain.
func (c *Classifier) RequiresAuth(rawURL string) bool {
	return Domain(rawURL) == strings.ToLower(c.AuthDomain)
}

// Partition splits urls into the authenticated and anonymous subsets,
// preserving input order within each.
func (c *Classifier) Partition(urls []string) (auth, anon []string) {
	for _, u := range urls {
		if c.RequiresAuth(u) {
			auth = append(auth, u)
		} else {
			anon = append(anon, u)
		}
	}
	return auth, anon
}

// Domain returns the lower-cased host of rawURL without port or a leading
// "www." prefix. It returns "" for unparseable URLs.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
