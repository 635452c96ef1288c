package concierge

// ExtractResult holds the content extracted from an HTML page.
type ExtractResult struct {
	// Title comes from <title>, falling back to the first <h1>.
	Title string

	// ContentHTML is the main-content region with non-content elements
	// removed.
	ContentHTML string

	// Text is the region's text, one non-empty line per text node.
	Text string
}

// Extractor locates the main content of an HTML page.
type Extractor interface {
	// Extract parses html fetched from pageURL. pageURL selects
	// site-specific content containers.
	Extract(html, pageURL string) (*ExtractResult, error)
}
