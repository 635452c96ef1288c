package concierge

import "context"

// DocType classifies what kind of content a Document holds.
type DocType string

// DocType values.
const (
	DocTypeLaws          DocType = "laws"
	DocTypeOrg           DocType = "org"
	DocTypeFAQ           DocType = "faq"
	DocTypeDirectory     DocType = "directory"
	DocTypeCertification DocType = "certification"
	DocTypeGeneral       DocType = "general"
	DocTypeLeagueRules   DocType = "league_rules"
	DocTypeWebPage       DocType = "web_page"
)

// Metadata describes where a Document came from and how it is classified.
type Metadata struct {
	// Source is a URL or file path and identifies the document.
	Source  string  `json:"source"`
	Title   string  `json:"title,omitempty"`
	DocType DocType `json:"docType,omitempty"`
	Org     string  `json:"org,omitempty"`

	// Page is the 1-based page number for PDF documents.
	Page int `json:"page,omitempty"`
}

// Document is a unit of ingested content. Documents are treated as values:
// transformations return a new Document rather than modifying the receiver.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.Metadata.Source == "" {
		return Errorf(EINVALID, "document source required")
	}
	return nil
}

// WithMetadata returns a copy of the document with the given metadata.
func (d *Document) WithMetadata(m Metadata) *Document {
	return &Document{Content: d.Content, Metadata: m}
}

// WithContent returns a copy of the document with the given content.
func (d *Document) WithContent(content string) *Document {
	return &Document{Content: content, Metadata: d.Metadata}
}

// LoadResult holds the documents produced by a loader together with the
// units that could not be loaded.
type LoadResult struct {
	Documents []*Document

	// Files is the number of files read successfully.
	Files    int
	Failures []Failure
}

// DocumentLoader produces documents from a source such as a directory tree.
type DocumentLoader interface {
	Load(ctx context.Context) (*LoadResult, error)
}

// PDFReader extracts plain text from a PDF file, one entry per page.
// Pages without text yield an empty string so indexes match page numbers.
type PDFReader interface {
	ReadPages(path string) ([]string, error)
}
