package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bkayser/concierge"
)

// Ensure FormParser implements concierge.FormParser at compile time.
var _ concierge.FormParser = (*FormParser)(nil)

// FormParser finds login forms by structure rather than field names.
type FormParser struct{}

// NewFormParser creates a new FormParser.
func NewFormParser() *FormParser {
	return &FormParser{}
}

// ParseLoginForm returns the first form containing an input of type
// password, matched case-insensitively. The form action is resolved
// against pageURL; a missing action submits to pageURL itself.
func (p *FormParser) ParseLoginForm(html, pageURL string) (*concierge.LoginForm, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, concierge.Errorf(concierge.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, concierge.Errorf(concierge.EINVALID, "failed to parse HTML: %v", err)
	}

	form := doc.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find("input").FilterFunction(isPasswordInput).Length() > 0
	}).First()
	if form.Length() == 0 {
		return nil, concierge.Errorf(concierge.ENOTFOUND, "no login form on %s", pageURL)
	}

	action := pageURL
	if a, ok := form.Attr("action"); ok && strings.TrimSpace(a) != "" {
		action = resolveURL(base, a)
	}
	method, _ := form.Attr("method")

	return &concierge.LoginForm{
		Action: action,
		Method: strings.TrimSpace(method),
		Fields: formFields(form),
	}, nil
}

func isPasswordInput(_ int, s *goquery.Selection) bool {
	t, _ := s.Attr("type")
	return strings.EqualFold(strings.TrimSpace(t), "password")
}

func formFields(form *goquery.Selection) []concierge.FormField {
	var fields []concierge.FormField
	form.Find("input").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		typ, _ := s.Attr("type")
		value, hasValue := s.Attr("value")
		_, checked := s.Attr("checked")
		fields = append(fields, concierge.FormField{
			Name:     name,
			Type:     strings.TrimSpace(typ),
			Value:    value,
			HasValue: hasValue,
			Checked:  checked,
		})
	})
	return fields
}
