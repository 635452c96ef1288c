package main

import (
	"fmt"

	"github.com/bkayser/concierge"
	"github.com/bkayser/concierge/ingest"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	p := deps.Pipeline
	if p.Web != nil && len(p.URLs) > 0 {
		fmt.Fprintf(deps.Stdout, "Fetching %d URLs\n", len(p.URLs))
		p.Web.Progress = func(pr concierge.Progress) {
			if pr.Error != nil {
				fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", pr.Unit, pr.Error)
				return
			}
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", pr.Completed, pr.Total, ingest.TruncateURL(pr.Unit, 60))
		}
	}

	summary, err := p.Run(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", concierge.ErrorMessage(err))
		return err
	}

	printSummary(deps, summary)
	return nil
}

func printSummary(deps *Dependencies, s *concierge.Summary) {
	fmt.Fprintf(deps.Stdout, "Loaded %d documents (%d files, %d URLs)\n", s.Documents, s.Files, s.URLs)
	if s.Tokens > 0 {
		fmt.Fprintf(deps.Stdout, "Indexed %d chunks (%s)\n", s.Chunks, ingest.FormatTokens(s.Tokens))
	} else {
		fmt.Fprintf(deps.Stdout, "Indexed %d chunks\n", s.Chunks)
	}
	if s.Skipped() == 0 {
		return
	}
	fmt.Fprintf(deps.Stdout, "Skipped %d:\n", s.Skipped())
	for _, f := range s.Failures {
		fmt.Fprintf(deps.Stdout, "  %s\n", f)
	}
}
