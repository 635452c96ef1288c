package ingest

import (
	"context"
	"fmt"

	"github.com/bkayser/concierge"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of chunks sent to the index per call.
const DefaultBatchSize = 100

// Pipeline runs one ingestion: local files and web pages are loaded in
// parallel, normalized, chunked and written to a freshly reset index.
type Pipeline struct {
	Files      concierge.DocumentLoader
	Web        *WebLoader
	URLs       []string
	Normalizer *concierge.Normalizer
	Splitter   concierge.Splitter
	Index      concierge.Index

	// TokenCounter, if set, sizes the corpus for the summary.
	TokenCounter concierge.TokenCounter
	BatchSize    int
}

// Run ingests everything and returns the run summary. Units that fail to
// load or index are recorded in the summary and skipped. Run returns an
// error only when the run as a whole cannot continue.
func (p *Pipeline) Run(ctx context.Context) (*concierge.Summary, error) {
	files, web, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	summary := &concierge.Summary{Files: files.Files}
	summary.Failures = append(summary.Failures, files.Failures...)
	summary.Failures = append(summary.Failures, web.Failures...)
	summary.URLs = len(web.Documents)

	docs := make([]*concierge.Document, 0, len(files.Documents)+len(web.Documents))
	docs = append(docs, files.Documents...)
	docs = append(docs, web.Documents...)

	normalizer := p.Normalizer
	if normalizer == nil {
		normalizer = concierge.NewNormalizer()
	}
	docs = normalizer.NormalizeAll(docs)
	summary.Documents = len(docs)

	if p.TokenCounter != nil {
		for _, doc := range docs {
			n, err := p.TokenCounter.CountTokens(ctx, doc.Content)
			if err != nil {
				return nil, fmt.Errorf("counting tokens for %s: %w", doc.Metadata.Source, err)
			}
			summary.Tokens += n
		}
	}

	chunks, err := p.Splitter.Split(docs)
	if err != nil {
		return nil, fmt.Errorf("splitting documents: %w", err)
	}
	if len(chunks) == 0 {
		return summary, nil
	}

	if err := p.Index.Reset(ctx); err != nil {
		return nil, fmt.Errorf("resetting index: %w", err)
	}

	size := p.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < len(chunks); start += size {
		end := min(start+size, len(chunks))
		if err := p.Index.Add(ctx, chunks[start:end]); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			summary.Failures = append(summary.Failures, concierge.Failure{
				Unit:  fmt.Sprintf("chunks %d-%d", start+1, end),
				Stage: concierge.StageIndex,
				Err:   err,
			})
			continue
		}
		summary.Chunks += end - start
	}

	return summary, nil
}

// load reads local files and web pages concurrently.
func (p *Pipeline) load(ctx context.Context) (files, web *concierge.LoadResult, err error) {
	files = &concierge.LoadResult{}
	web = &concierge.LoadResult{}

	g, gctx := errgroup.WithContext(ctx)
	if p.Files != nil {
		g.Go(func() error {
			r, err := p.Files.Load(gctx)
			if err != nil {
				return fmt.Errorf("loading files: %w", err)
			}
			files = r
			return nil
		})
	}
	if p.Web != nil && len(p.URLs) > 0 {
		g.Go(func() error {
			r, err := p.Web.LoadURLs(gctx, p.URLs)
			if err != nil {
				return fmt.Errorf("loading URLs: %w", err)
			}
			web = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return files, web, nil
}
