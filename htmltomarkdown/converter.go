// Package htmltomarkdown converts extracted HTML regions to Markdown using
// the html-to-markdown library.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/bkayser/concierge"
)

// StrippedSelector matches elements dropped before conversion. Curated
// files are text only.
const StrippedSelector = "img, picture, figcaption"

var blankLines = regexp.MustCompile(`\n{3,}`)

// Ensure Converter implements concierge.Converter at compile time.
var _ concierge.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown with ATX
// headings and "-" bullets.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle(commonmark.HeadingStyleATX),
				commonmark.WithBulletListMarker("-"),
			),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown. Images and captions are
// removed, figure wrappers are unwrapped, runs of blank lines collapse to
// one and the result is trimmed.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", concierge.Errorf(concierge.EINVALID, "empty HTML input")
	}

	cleaned, err := textOnly(html)
	if err != nil {
		return "", err
	}

	result, err := c.conv.ConvertString(cleaned)
	if err != nil {
		return "", err
	}

	result = blankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result), nil
}

// textOnly removes images from html and replaces each figure with its
// remaining children.
func textOnly(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", concierge.Errorf(concierge.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find(StrippedSelector).Remove()
	doc.Find("figure").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})

	return doc.Find("body").Html()
}
