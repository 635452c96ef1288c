package concierge

import (
	"path"
	"strings"
)

// ClassificationRule derives metadata for documents whose lower-cased,
// slash-separated source matches.
type ClassificationRule struct {
	Name  string
	Match func(source string) bool

	// Apply returns the enriched metadata. source is the original,
	// slash-separated source with its case preserved.
	Apply func(m Metadata, source string) Metadata
}

// DefaultURLRules classify documents fetched from the web. URLs that match
// no rule keep the metadata set by the extractor.
var DefaultURLRules = []ClassificationRule{
	{
		Name:  "rules-domain",
		Match: func(s string) bool { return strings.Contains(s, DefaultRulesDomain) },
		Apply: withDocType(DocTypeLaws),
	},
}

// DefaultPathRules classify documents loaded from files. The last rule
// matches everything and assigns DocTypeGeneral.
var DefaultPathRules = []ClassificationRule{
	{
		Name:  "orgs",
		Match: func(s string) bool { return strings.Contains(s, "/orgs/") },
		Apply: func(m Metadata, source string) Metadata {
			m.DocType = DocTypeOrg
			parts := strings.Split(source, "/")
			for i, p := range parts {
				if strings.EqualFold(p, "orgs") && i+1 < len(parts) {
					m.Org = parts[i+1]
					break
				}
			}
			return m
		},
	},
	{
		Name:  "text",
		Match: func(s string) bool { return strings.Contains(s, "/text/") },
		Apply: func(m Metadata, source string) Metadata {
			s := strings.ToLower(source)
			switch {
			case strings.Contains(s, "faq"):
				m.DocType = DocTypeFAQ
			case strings.Contains(s, "directory"):
				m.DocType = DocTypeDirectory
			case strings.Contains(s, "certification"):
				m.DocType = DocTypeCertification
			default:
				m.DocType = DocTypeGeneral
			}
			return m
		},
	},
	{
		Name: "league-rules",
		Match: func(s string) bool {
			return strings.Contains(path.Base(s), "rules") &&
				(strings.HasSuffix(s, ".pdf") || strings.HasSuffix(s, ".md"))
		},
		Apply: withDocType(DocTypeLeagueRules),
	},
	{
		Name:  "default",
		Match: func(string) bool { return true },
		Apply: withDocType(DocTypeGeneral),
	},
}

func withDocType(t DocType) func(Metadata, string) Metadata {
	return func(m Metadata, _ string) Metadata {
		m.DocType = t
		return m
	}
}

// Normalizer assigns doc_type, org and title to documents from the shape
// of their source.
type Normalizer struct {
	URLRules  []ClassificationRule
	PathRules []ClassificationRule
}

// NewNormalizer returns a Normalizer using the default rules.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		URLRules:  DefaultURLRules,
		PathRules: DefaultPathRules,
	}
}

// Normalize returns a new Document with enriched metadata. The first
// matching rule wins.
func (n *Normalizer) Normalize(doc *Document) *Document {
	source := strings.ReplaceAll(doc.Metadata.Source, "\\", "/")
	lower := strings.ToLower(source)

	if IsURL(lower) {
		m, _ := applyFirst(n.URLRules, doc.Metadata, source, lower)
		return doc.WithMetadata(m)
	}

	if !strings.HasPrefix(lower, "/") {
		lower = "/" + lower
	}
	m, _ := applyFirst(n.PathRules, doc.Metadata, source, lower)

	if m.Title == "" && hasDocumentExt(lower) {
		m.Title = TitleFromFilename(source)
	}
	return doc.WithMetadata(m)
}

// NormalizeAll normalizes every document.
func (n *Normalizer) NormalizeAll(docs []*Document) []*Document {
	out := make([]*Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, n.Normalize(d))
	}
	return out
}

func applyFirst(rules []ClassificationRule, m Metadata, source, lower string) (Metadata, bool) {
	for _, r := range rules {
		if r.Match(lower) {
			return r.Apply(m, source), true
		}
	}
	return m, false
}

func hasDocumentExt(p string) bool {
	switch path.Ext(p) {
	case ".md", ".txt", ".pdf":
		return true
	}
	return false
}

// TitleFromFilename derives a title from a path's file stem, replacing
// underscores and hyphens with spaces.
func TitleFromFilename(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	return strings.NewReplacer("_", " ", "-", " ").Replace(stem)
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
