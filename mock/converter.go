package mock

import "github.com/bkayser/concierge"

var _ concierge.Converter = (*Converter)(nil)

// Converter is a mock implementation of concierge.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
