// Package pdf extracts plain text from PDF files with ledongthuc/pdf.
package pdf

import (
	"fmt"
	"strings"

	"github.com/bkayser/concierge"
	"github.com/ledongthuc/pdf"
)

// Ensure Reader implements concierge.PDFReader at compile time.
var _ concierge.PDFReader = (*Reader)(nil)

// Reader reads the text of each page of a PDF file.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadPages returns the plain text of every page in order. Pages without
// a content stream yield an empty string.
func (r *Reader) ReadPages(path string) (pages []string, err error) {
	// ledongthuc/pdf panics on some malformed files.
	defer func() {
		if p := recover(); p != nil {
			pages, err = nil, concierge.Errorf(concierge.EINVALID, "malformed PDF %s: %v", path, p)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, concierge.Errorf(concierge.EINVALID, "open PDF %s: %v", path, err)
	}
	defer f.Close()

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read page %d of %s: %w", i, path, err)
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages, nil
}
