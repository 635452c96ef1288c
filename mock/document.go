package mock

import (
	"context"

	"github.com/bkayser/concierge"
)

// Compile-time interface verification.
var (
	_ concierge.DocumentLoader = (*DocumentLoader)(nil)
	_ concierge.PDFReader      = (*PDFReader)(nil)
	_ concierge.Splitter       = (*Splitter)(nil)
)

// DocumentLoader is a mock implementation of concierge.DocumentLoader.
type DocumentLoader struct {
	LoadFn func(ctx context.Context) (*concierge.LoadResult, error)
}

func (l *DocumentLoader) Load(ctx context.Context) (*concierge.LoadResult, error) {
	return l.LoadFn(ctx)
}

// PDFReader is a mock implementation of concierge.PDFReader.
type PDFReader struct {
	ReadPagesFn func(path string) ([]string, error)
}

func (r *PDFReader) ReadPages(path string) ([]string, error) {
	return r.ReadPagesFn(path)
}

// Splitter is a mock implementation of concierge.Splitter.
type Splitter struct {
	SplitFn func(docs []*concierge.Document) ([]*concierge.Chunk, error)
}

func (s *Splitter) Split(docs []*concierge.Document) ([]*concierge.Chunk, error) {
	return s.SplitFn(docs)
}
