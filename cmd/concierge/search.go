package main

import (
	"fmt"
	"strings"

	"github.com/bkayser/concierge"
)

// snippetLen is the number of characters of chunk content shown per result.
const snippetLen = 200

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Index.Search(deps.Ctx, c.Query, c.K)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", concierge.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results. Use 'concierge ingest' to build the index.")
		return nil
	}

	for i, r := range results {
		m := r.Chunk.Metadata
		title := m.Title
		if title == "" {
			title = m.Source
		}
		source := m.Source
		if m.Page > 0 {
			source = fmt.Sprintf("%s p.%d", source, m.Page)
		}
		fmt.Fprintf(deps.Stdout, "%d. [%.3f] %s (%s)\n   %s\n   %s\n",
			i+1, r.Score, title, m.DocType, source, snippet(r.Chunk.Content))
	}
	return nil
}

// snippet collapses whitespace and shortens content for display.
func snippet(content string) string {
	s := []rune(strings.Join(strings.Fields(content), " "))
	if len(s) <= snippetLen {
		return string(s)
	}
	return string(s[:snippetLen-3]) + "..."
}
