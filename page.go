package concierge

import "context"

// Page is a fetched web page converted to Markdown for human curation.
type Page struct {
	URL     string
	Title   string
	Content string // Markdown

	// Output is an optional basename for the saved file.
	Output string
}

// Progress reports the outcome of one unit during a run.
type Progress struct {
	Unit      string
	Completed int
	Total     int
	Error     error
}

// ProgressFunc is called as units are processed.
type ProgressFunc func(Progress)

// PageStore saves curated pages.
type PageStore interface {
	// Save writes the page and returns the path written. It never
	// overwrites an existing file; that case returns ECONFLICT.
	Save(ctx context.Context, page *Page) (string, error)
}
