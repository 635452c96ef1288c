package concierge

import "strings"

// ParseFrontMatter splits a leading "---" delimited block of "key: value"
// lines from content. Keys are lower-cased. Content without a closed block
// is returned unchanged with empty metadata.
func ParseFrontMatter(content string) (map[string]string, string) {
	meta := map[string]string{}
	if !strings.HasPrefix(content, "---") {
		return meta, content
	}

	rest := content[3:]
	idx := strings.Index(rest, "\n---")
	if idx == -1 {
		return meta, content
	}

	block := strings.TrimSpace(rest[:idx])
	body := strings.TrimLeft(rest[idx+4:], "\n")

	for _, line := range strings.Split(block, "\n") {
		k, v, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		meta[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return meta, body
}

// StripFrontMatter moves a Markdown document's front matter into its
// metadata. Title and source keys override the existing values; the
// returned content excludes the block.
func StripFrontMatter(doc *Document) *Document {
	meta, body := ParseFrontMatter(doc.Content)
	m := doc.Metadata
	if v := meta["title"]; v != "" {
		m.Title = v
	}
	if v := meta["source"]; v != "" {
		m.Source = v
	}
	return &Document{Content: body, Metadata: m}
}
