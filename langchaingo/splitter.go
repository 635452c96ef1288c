// Package langchaingo splits documents into chunks with the langchaingo
// recursive character text splitter.
package langchaingo

import (
	"strings"

	"github.com/bkayser/concierge"
	"github.com/tmc/langchaingo/textsplitter"
)

// Default splitter settings. Sizes are measured in characters.
const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 250
)

// DefaultSeparators prefer Markdown section breaks, then paragraphs,
// lines and words.
var DefaultSeparators = []string{"\n## ", "\n### ", "\n\n", "\n", " "}

// Ensure Splitter implements concierge.Splitter at compile time.
var _ concierge.Splitter = (*Splitter)(nil)

// Splitter splits documents into overlapping chunks, keeping separators
// with the text that follows them.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string

	splitter textsplitter.RecursiveCharacter
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk size.
func WithChunkSize(n int) Option {
	return func(s *Splitter) {
		s.chunkSize = n
	}
}

// WithChunkOverlap sets how many characters adjacent chunks share.
func WithChunkOverlap(n int) Option {
	return func(s *Splitter) {
		s.chunkOverlap = n
	}
}

// WithSeparators sets the separators tried in order.
func WithSeparators(seps []string) Option {
	return func(s *Splitter) {
		s.separators = seps
	}
}

// NewSplitter creates a Splitter with the default settings.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   DefaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
		textsplitter.WithSeparators(s.separators),
		textsplitter.WithKeepSeparator(true),
	)
	return s
}

// Split returns the chunks of every document in input order. Each chunk
// carries its parent's metadata. Documents with blank content produce no
// chunks.
func (s *Splitter) Split(docs []*concierge.Document) ([]*concierge.Chunk, error) {
	var chunks []*concierge.Chunk
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}

		parts, err := s.splitter.SplitText(doc.Content)
		if err != nil {
			return nil, concierge.Errorf(concierge.EINTERNAL, "split %s: %v", doc.Metadata.Source, err)
		}

		pos := 0
		for _, p := range parts {
			if strings.TrimSpace(p) == "" {
				continue
			}
			chunks = append(chunks, &concierge.Chunk{
				Content:  p,
				Metadata: doc.Metadata,
				Position: pos,
			})
			pos++
		}
	}
	return chunks, nil
}
