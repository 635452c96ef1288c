package concierge

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms an extracted content region into Markdown for
	// curated files.
	Convert(html string) (string, error)
}
