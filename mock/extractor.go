package mock

import "github.com/bkayser/concierge"

var _ concierge.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of concierge.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*concierge.ExtractResult, error)
}

func (e *Extractor) Extract(html, pageURL string) (*concierge.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}
