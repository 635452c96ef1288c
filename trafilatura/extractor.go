// Package trafilatura extracts main page content with go-trafilatura. It
// suits long article-style pages such as the published Laws of the Game.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/bkayser/concierge"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements concierge.Extractor at compile time.
var _ concierge.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	fallback bool
}

// NewExtractor creates a new Extractor with fallback extraction enabled.
func NewExtractor() *Extractor {
	return &Extractor{fallback: true}
}

// Extract processes raw HTML and returns the main content. pageURL, when
// parseable, lets trafilatura resolve relative links.
func (e *Extractor) Extract(rawHTML, pageURL string) (*concierge.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, concierge.Errorf(concierge.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: e.fallback,
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &concierge.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
		Text:        strings.TrimSpace(result.ContentText),
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
