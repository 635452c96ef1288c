package ingest

import (
	"context"
	"fmt"

	"github.com/bkayser/concierge"
)

// Curator fetches web pages and saves them as Markdown files for human
// review before they are added to the data root.
type Curator struct {
	Fetcher   *Fetcher
	Extractor concierge.Extractor
	Converter concierge.Converter
	Store     concierge.PageStore

	// Sitemaps and Seen are optional. Seen drops URLs already handled.
	Sitemaps concierge.SitemapService
	Seen     concierge.SeenFilter

	Progress concierge.ProgressFunc
}

// CurateResult reports the outcome of a curated fetch.
type CurateResult struct {
	// Saved holds the paths written.
	Saved    []string
	Total    int
	Failures []concierge.Failure
}

// String returns the "n/m URLs processed" summary line.
func (r *CurateResult) String() string {
	return fmt.Sprintf("%d/%d URLs processed", len(r.Saved), r.Total)
}

// Discover returns entries for the pages listed in the sitemaps of
// baseURL that pass filter.
func (c *Curator) Discover(ctx context.Context, baseURL string, filter *concierge.URLFilter) ([]concierge.URLEntry, error) {
	if c.Sitemaps == nil {
		return nil, concierge.Errorf(concierge.EINVALID, "sitemap discovery not configured")
	}
	urls, err := c.Sitemaps.DiscoverURLs(ctx, baseURL, filter)
	if err != nil {
		return nil, err
	}
	entries := make([]concierge.URLEntry, 0, len(urls))
	for _, u := range urls {
		entries = append(entries, concierge.URLEntry{URL: u})
	}
	return entries, nil
}

// Fetch saves one Markdown page per entry. URLs on the authenticated
// domain use the session when one can be had and are fetched anonymously
// otherwise. Existing files are never overwritten; that and every other
// per-URL error is recorded as a failure.
func (c *Curator) Fetch(ctx context.Context, entries []concierge.URLEntry) (*CurateResult, error) {
	entries = c.dedupe(entries)
	result := &CurateResult{Total: len(entries)}
	if len(entries) == 0 {
		return result, nil
	}

	urls := concierge.URLs(entries)
	var session *concierge.Session
	if auth, _ := c.Fetcher.Partition(urls); len(auth) > 0 {
		s, err := c.Fetcher.Session(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		session = s
	}

	saved := make([]string, len(entries))
	stages := make([]concierge.Stage, len(entries))
	errs, err := forEach(ctx, c.Fetcher.concurrency(), urls, c.Progress, func(ctx context.Context, pos int, u string) error {
		var s *concierge.Session
		if c.Fetcher.RequiresAuth(u) {
			s = session
		}
		path, stage, err := c.curate(ctx, entries[pos], s)
		saved[pos], stages[pos] = path, stage
		return err
	})
	if err != nil {
		return nil, err
	}

	for i, e := range entries {
		if errs[i] != nil {
			result.Failures = append(result.Failures, concierge.Failure{Unit: e.URL, Stage: stages[i], Err: errs[i]})
			continue
		}
		result.Saved = append(result.Saved, saved[i])
	}
	return result, nil
}

// curate fetches, converts and saves one page. It returns the path written
// or the stage that failed.
func (c *Curator) curate(ctx context.Context, entry concierge.URLEntry, session *concierge.Session) (string, concierge.Stage, error) {
	resp, err := c.Fetcher.Fetch(ctx, entry.URL, session)
	if err != nil {
		return "", concierge.StageFetch, err
	}

	extracted, err := c.Extractor.Extract(string(resp.Body), resp.URL)
	if err != nil {
		return "", concierge.StageFetch, err
	}

	markdown, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return "", concierge.StageFetch, err
	}

	path, err := c.Store.Save(ctx, &concierge.Page{
		URL:     entry.URL,
		Title:   extracted.Title,
		Content: markdown,
		Output:  entry.Output,
	})
	if err != nil {
		return "", concierge.StageSave, err
	}
	return path, "", nil
}

// dedupe drops entries whose URL was already seen in this run.
func (c *Curator) dedupe(entries []concierge.URLEntry) []concierge.URLEntry {
	if c.Seen == nil {
		return entries
	}
	out := make([]concierge.URLEntry, 0, len(entries))
	for _, e := range entries {
		if c.Seen.Seen(e.URL) {
			continue
		}
		out = append(out, e)
	}
	return out
}
