package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bkayser/concierge"
	"github.com/bkayser/concierge/ingest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Curator *ingest.Curator
}

// FetchCmd fetches pages and saves them as Markdown.
type FetchCmd struct {
	URLs    []string
	File    string
	Out     string
	Sitemap string
	Filter  []string
}

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	entries, err := c.entries(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", concierge.ErrorMessage(err))
		return err
	}
	if len(entries) == 0 {
		return concierge.Errorf(concierge.EINVALID, "no URLs provided")
	}

	fmt.Fprintf(deps.Stdout, "Processing %d URL(s)...\n", len(entries))

	deps.Curator.Progress = func(p concierge.Progress) {
		if p.Error != nil {
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", p.Unit, p.Error)
			return
		}
		fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", p.Completed, p.Total, ingest.TruncateURL(p.Unit, 60))
	}

	result, err := deps.Curator.Fetch(deps.Ctx, entries)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", concierge.ErrorMessage(err))
		return err
	}

	for _, path := range result.Saved {
		fmt.Fprintf(deps.Stdout, "  -> Saved: %s\n", path)
	}
	fmt.Fprintf(deps.Stdout, "Done. %s successfully.\n", result)
	if out, err := filepath.Abs(c.Out); err == nil {
		fmt.Fprintf(deps.Stdout, "Output directory: %s\n", out)
	}
	return nil
}

// entries collects URLs from arguments, the URL file and the sitemap, in
// that order.
func (c *FetchCmd) entries(deps *Dependencies) ([]concierge.URLEntry, error) {
	var entries []concierge.URLEntry
	for _, u := range c.URLs {
		entries = append(entries, concierge.URLEntry{URL: u})
	}

	if c.File != "" {
		f, err := os.Open(c.File)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, concierge.Errorf(concierge.ENOTFOUND, "file not found: %s", c.File)
		} else if err != nil {
			return nil, err
		}
		defer f.Close()

		fromFile, err := concierge.ParseURLList(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromFile...)
	}

	if c.Sitemap != "" {
		filter, err := c.urlFilter()
		if err != nil {
			return nil, err
		}
		found, err := deps.Curator.Discover(deps.Ctx, c.Sitemap, filter)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(deps.Stdout, "Found %d URLs in sitemap\n", len(found))
		entries = append(entries, found...)
	}
	return entries, nil
}

func (c *FetchCmd) urlFilter() (*concierge.URLFilter, error) {
	if len(c.Filter) == 0 {
		return nil, nil
	}
	filter := &concierge.URLFilter{}
	for _, pattern := range c.Filter {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, concierge.Errorf(concierge.EINVALID, "invalid filter pattern %q: %v", pattern, err)
		}
		filter.Include = append(filter.Include, re)
	}
	return filter, nil
}
