package ingest

import (
	"context"

	"github.com/bkayser/concierge"
)

// WebLoader fetches web pages and turns them into documents for indexing.
type WebLoader struct {
	Fetcher   *Fetcher
	Extractor concierge.Extractor

	// RulesDomain pages are classified as the Laws of the Game.
	RulesDomain string

	// Progress, if set, is called as each URL finishes.
	Progress concierge.ProgressFunc
}

// NewWebLoader returns a WebLoader with the default rules domain.
func NewWebLoader(fetcher *Fetcher, extractor concierge.Extractor) *WebLoader {
	return &WebLoader{
		Fetcher:     fetcher,
		Extractor:   extractor,
		RulesDomain: concierge.DefaultRulesDomain,
	}
}

// LoadURLs fetches urls and returns one document per page, anonymous
// pages first, each subset in input order. URLs on the authenticated domain are fetched with the session;
// when no session can be had they are recorded as auth failures and not
// fetched. A page that cannot be fetched or extracted is recorded as a
// fetch failure.
func (w *WebLoader) LoadURLs(ctx context.Context, urls []string) (*concierge.LoadResult, error) {
	result := &concierge.LoadResult{}
	if len(urls) == 0 {
		return result, nil
	}

	auth, anon := w.Fetcher.Partition(urls)
	targets := anon

	var session *concierge.Session
	if len(auth) > 0 {
		s, err := w.Fetcher.Session(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			for _, u := range auth {
				result.Failures = append(result.Failures, concierge.Failure{Unit: u, Stage: concierge.StageAuth, Err: err})
			}
		} else {
			session = s
			targets = append(targets[:len(targets):len(targets)], auth...)
		}
	}

	docs := make([]*concierge.Document, len(targets))
	errs, err := forEach(ctx, w.Fetcher.concurrency(), targets, w.Progress, func(ctx context.Context, pos int, u string) error {
		var s *concierge.Session
		if pos >= len(anon) {
			s = session
		}
		doc, err := w.load(ctx, u, s)
		docs[pos] = doc
		return err
	})
	if err != nil {
		return nil, err
	}

	for i, u := range targets {
		if errs[i] != nil {
			result.Failures = append(result.Failures, concierge.Failure{Unit: u, Stage: concierge.StageFetch, Err: errs[i]})
			continue
		}
		result.Documents = append(result.Documents, docs[i])
	}
	return result, nil
}

func (w *WebLoader) load(ctx context.Context, rawURL string, session *concierge.Session) (*concierge.Document, error) {
	resp, err := w.Fetcher.Fetch(ctx, rawURL, session)
	if err != nil {
		return nil, err
	}

	extracted, err := w.Extractor.Extract(string(resp.Body), resp.URL)
	if err != nil {
		return nil, err
	}

	docType := concierge.DocTypeWebPage
	if w.RulesDomain != "" && concierge.Domain(rawURL) == w.RulesDomain {
		docType = concierge.DocTypeLaws
	}

	return &concierge.Document{
		Content: extracted.Text,
		Metadata: concierge.Metadata{
			Source:  rawURL,
			Title:   extracted.Title,
			DocType: docType,
		},
	}, nil
}
