package concierge

import (
	"bufio"
	"io"
	"strings"
)

// DefaultURLListName is the URL list file read from the data root.
const DefaultURLListName = "_urls.txt"

// URLEntry is one line of a URL list.
type URLEntry struct {
	URL string

	// Output is an optional basename for the curated Markdown file.
	Output string
}

// ParseURLList reads "url [output]" lines. Blank lines and lines starting
// with # are ignored.
func ParseURLList(r io.Reader) ([]URLEntry, error) {
	var entries []URLEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		e := URLEntry{URL: fields[0]}
		if len(fields) > 1 {
			e.Output = fields[1]
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// URLs returns the URL of every entry.
func URLs(entries []URLEntry) []string {
	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		urls = append(urls, e.URL)
	}
	return urls
}

// SeenFilter remembers URLs already handled in a run.
type SeenFilter interface {
	// Seen reports whether rawURL was handled before and records it.
	Seen(rawURL string) bool
}
