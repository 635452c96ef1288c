package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bkayser/concierge"
	"golang.org/x/net/html"
)

// NonContentSelector matches elements removed before extraction.
const NonContentSelector = "script, style, nav, footer, header, aside, iframe, noscript"

// DefaultSiteSelector matches the content container of the authenticated site.
const DefaultSiteSelector = "#content, .content, #main-content, .main-content, #maincontent"

// contentClass matches class names of generic content containers.
var contentClass = regexp.MustCompile(`(?i)content|main|article`)

// Ensure Extractor implements concierge.Extractor at compile time.
var _ concierge.Extractor = (*Extractor)(nil)

// Extractor strips non-content elements and locates the main content
// region of a page.
type Extractor struct {
	// sites maps a domain to the selector of its content container.
	sites map[string]string
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithSiteSelector sets the content selector tried first for pages on
// domain. An empty selector removes the domain.
func WithSiteSelector(domain, selector string) ExtractorOption {
	return func(e *Extractor) {
		domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
		if selector == "" {
			delete(e.sites, domain)
			return
		}
		e.sites[domain] = selector
	}
}

// NewExtractor creates an Extractor with the default site selector for
// the authenticated domain.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		sites: map[string]string{concierge.DefaultAuthDomain: DefaultSiteSelector},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the page title, the main-content region as HTML and its
// text with one line per non-empty text node.
func (e *Extractor) Extract(rawHTML, pageURL string) (*concierge.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, concierge.Errorf(concierge.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, concierge.Errorf(concierge.EINVALID, "failed to parse HTML: %v", err)
	}

	title := pageTitle(doc)
	doc.Find(NonContentSelector).Remove()

	region := e.mainRegion(doc, pageURL)
	contentHTML, err := goquery.OuterHtml(region)
	if err != nil {
		return nil, err
	}

	return &concierge.ExtractResult{
		Title:       title,
		ContentHTML: contentHTML,
		Text:        Text(region),
	}, nil
}

// mainRegion returns the first match of: the site's content container,
// main, article, an element with a content-like class, body. It falls
// back to the whole document.
func (e *Extractor) mainRegion(doc *goquery.Document, pageURL string) *goquery.Selection {
	if sel, ok := e.sites[concierge.Domain(pageURL)]; ok {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	for _, sel := range []string{"main", "article"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	classed := doc.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return contentClass.MatchString(class)
	}).First()
	if classed.Length() > 0 {
		return classed
	}
	if s := doc.Find("body").First(); s.Length() > 0 {
		return s
	}
	return doc.Selection
}

// pageTitle returns the <title> text, falling back to the first <h1>.
func pageTitle(doc *goquery.Document) string {
	if t := collapseSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return collapseSpace(doc.Find("h1").First().Text())
}

// Text joins the whitespace-normalized text nodes under s with newlines,
// skipping empty ones.
func Text(s *goquery.Selection) string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := collapseSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(lines, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
