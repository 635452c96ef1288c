// Package readability extracts main page content with go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/bkayser/concierge"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements concierge.Extractor at compile time.
var _ concierge.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. Relative links
// are resolved against pageURL when it parses.
func (e *Extractor) Extract(rawHTML, pageURL string) (*concierge.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, concierge.Errorf(concierge.EINVALID, "empty HTML input")
	}

	var u *url.URL
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
		u = parsed
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		return nil, err
	}

	return &concierge.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
		Text:        strings.TrimSpace(article.TextContent),
	}, nil
}
