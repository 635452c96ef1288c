package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bkayser/concierge"
)

// DefaultExcludedNames are file names never loaded, in addition to names
// starting with "_".
var DefaultExcludedNames = []string{concierge.DefaultURLListName, "league-template.md"}

// formatClass is one file extension loaded as a unit.
type formatClass struct {
	ext   string
	stage concierge.Stage
}

var formatClasses = []formatClass{
	{".txt", concierge.StageLoadText},
	{".md", concierge.StageLoadMarkdown},
	{".pdf", concierge.StageLoadPDF},
}

// Ensure Loader implements concierge.DocumentLoader at compile time.
var _ concierge.DocumentLoader = (*Loader)(nil)

// Loader loads .txt, .md and .pdf files from a directory tree.
type Loader struct {
	root     string
	pdf      concierge.PDFReader
	excluded []string

	// excludedPaths holds cleaned absolute paths skipped wherever they
	// sit under the root.
	excludedPaths map[string]bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithExcludedNames replaces the file names skipped by the loader.
func WithExcludedNames(names ...string) LoaderOption {
	return func(l *Loader) {
		l.excluded = names
	}
}

// WithExcludedPaths skips the files at paths. Unlike excluded names, a
// file of the same name elsewhere in the tree is still loaded.
func WithExcludedPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		if l.excludedPaths == nil {
			l.excludedPaths = make(map[string]bool)
		}
		for _, p := range paths {
			if p == "" {
				continue
			}
			if abs, err := filepath.Abs(p); err == nil {
				l.excludedPaths[abs] = true
			}
		}
	}
}

// NewLoader creates a Loader rooted at root.
func NewLoader(root string, pdf concierge.PDFReader, opts ...LoaderOption) *Loader {
	l := &Loader{
		root:     root,
		pdf:      pdf,
		excluded: DefaultExcludedNames,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every file under the root, one format class at a time. A file
// that cannot be read is recorded as a failure and loading continues. A
// missing root is created and yields no documents.
func (l *Loader) Load(ctx context.Context) (*concierge.LoadResult, error) {
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return nil, err
	}

	result := &concierge.LoadResult{}
	for _, class := range formatClasses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		paths, err := l.find(class.ext)
		if err != nil {
			result.Failures = append(result.Failures, concierge.Failure{Unit: l.root, Stage: class.stage, Err: err})
			continue
		}

		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			docs, err := l.loadFile(path, class.ext)
			if err != nil {
				result.Failures = append(result.Failures, concierge.Failure{Unit: path, Stage: class.stage, Err: err})
				continue
			}
			result.Files++
			result.Documents = append(result.Documents, docs...)
		}
	}
	return result, nil
}

// find returns the slash-form paths of files under the root with ext, in
// lexical order.
func (l *Loader) find(ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "_") || slices.Contains(l.excluded, name) || l.isExcludedPath(path) {
			return nil
		}
		paths = append(paths, filepath.ToSlash(path))
		return nil
	})
	return paths, err
}

func (l *Loader) loadFile(path, ext string) ([]*concierge.Document, error) {
	if ext == ".pdf" {
		return l.loadPDF(path)
	}

	data, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return nil, err
	}
	doc := &concierge.Document{
		Content:  string(data),
		Metadata: concierge.Metadata{Source: path},
	}
	if ext == ".md" {
		doc = concierge.StripFrontMatter(doc)
	}
	return []*concierge.Document{doc}, nil
}

func (l *Loader) loadPDF(path string) ([]*concierge.Document, error) {
	if l.pdf == nil {
		return nil, errors.New("no PDF reader configured")
	}
	pages, err := l.pdf.ReadPages(filepath.FromSlash(path))
	if err != nil {
		return nil, err
	}

	docs := make([]*concierge.Document, 0, len(pages))
	for i, text := range pages {
		docs = append(docs, &concierge.Document{
			Content:  text,
			Metadata: concierge.Metadata{Source: path, Page: i + 1},
		})
	}
	return docs, nil
}

func (l *Loader) isExcludedPath(path string) bool {
	if len(l.excludedPaths) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	return err == nil && l.excludedPaths[abs]
}
