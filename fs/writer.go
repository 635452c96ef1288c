// Package fs reads and writes the document corpus on the local filesystem.
package fs

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bkayser/concierge"
)

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	underscores = regexp.MustCompile(`_+`)
)

// URLToFilename converts a page URL to a flat Markdown filename.
// Example: https://www.theifab.com/laws/latest/offside/ →
// theifab.com_laws_latest_offside.md
func URLToFilename(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", concierge.Errorf(concierge.EINVALID, "invalid URL %q", rawURL)
	}
	if u.Host == "" {
		return "", concierge.Errorf(concierge.EINVALID, "URL %q has no host", rawURL)
	}

	name := strings.ReplaceAll(u.Host, "www.", "")
	if p := strings.ReplaceAll(strings.Trim(u.Path, "/"), "/", "_"); p != "" {
		name += "_" + p
	}

	name = unsafeChars.ReplaceAllString(name, "_")
	name = underscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	return withMarkdownExt(name), nil
}

func withMarkdownExt(name string) string {
	if strings.HasSuffix(name, ".md") {
		return name
	}
	return name + ".md"
}

// FormatPage formats a page with front matter and a title heading. An
// empty title falls back to the page URL.
func FormatPage(page *concierge.Page) string {
	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = page.URL
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(title)
	b.WriteString("\n---\n\n# ")
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(page.Content))
	b.WriteString("\n")
	return b.String()
}

// Ensure Writer implements concierge.PageStore at compile time.
var _ concierge.PageStore = (*Writer)(nil)

// Writer saves curated pages as Markdown files in a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Save writes page to the base directory and returns the path written.
// The filename is the page's Output basename when set, otherwise derived
// from its URL. Existing files are never overwritten.
func (w *Writer) Save(ctx context.Context, page *concierge.Page) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := w.filename(page)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(w.baseDir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return "", concierge.Errorf(concierge.ECONFLICT, "%s already exists", path)
	} else if err != nil {
		return "", err
	}

	if _, err := f.WriteString(FormatPage(page)); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func (w *Writer) filename(page *concierge.Page) (string, error) {
	if page.Output == "" {
		return URLToFilename(page.URL)
	}
	if page.Output != filepath.Base(page.Output) || strings.HasPrefix(page.Output, ".") {
		return "", concierge.Errorf(concierge.EINVALID, "output %q must be a plain file name", page.Output)
	}
	return withMarkdownExt(page.Output), nil
}
