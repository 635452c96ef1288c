package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bkayser/concierge"
)

// Ensure RedirectFinder implements concierge.RedirectFinder at compile time.
var _ concierge.RedirectFinder = (*RedirectFinder)(nil)

// Default patterns for client-side redirects. The first capture group is
// the target URL.
var (
	DefaultRefreshPattern  = regexp.MustCompile(`(?i)url\s*=\s*['"]?([^'";\s]+)`)
	DefaultLocationPattern = regexp.MustCompile(`(?i)(?:^|[^\w-])(?:(?:window|document|top|self)\.)?location(?:\.href)?\s*(?:=\s*|\.(?:replace|assign)\(\s*)['"]([^'"]+)['"]`)
	DefaultContentPattern  = regexp.MustCompile(`(?i)content\s*=\s*['"][^'"]*?url\s*=\s*['"]?([^'"\s;>]+)`)
)

// RedirectFinder detects client-side redirects in intermediary pages.
// The patterns match undocumented third-party markup and can be replaced.
type RedirectFinder struct {
	Refresh  *regexp.Regexp
	Location *regexp.Regexp
	Content  *regexp.Regexp
}

// NewRedirectFinder creates a RedirectFinder with the default patterns.
func NewRedirectFinder() *RedirectFinder {
	return &RedirectFinder{
		Refresh:  DefaultRefreshPattern,
		Location: DefaultLocationPattern,
		Content:  DefaultContentPattern,
	}
}

// FindRedirect returns the first target found, trying in order: a meta
// refresh tag, a JavaScript location assignment, a loose url= token in a
// content attribute, and a same-domain anchor whose path contains the
// policy's continue marker.
func (f *RedirectFinder) FindRedirect(body, pageURL string, policy concierge.RedirectPolicy) (string, bool) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	candidates := []func() string{
		func() string { return f.metaRefresh(doc) },
		func() string { return submatch(f.Location, body) },
		func() string { return submatch(f.Content, body) },
		func() string { return continueLink(doc, base, policy.ContinueMarker) },
	}
	for _, candidate := range candidates {
		target := candidate()
		if target == "" || isNonHTTPLink(target) {
			continue
		}
		if resolved := resolveURL(base, target); resolved != "" {
			return resolved, true
		}
	}
	return "", false
}

func (f *RedirectFinder) metaRefresh(doc *goquery.Document) string {
	var target string
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		equiv, _ := s.Attr("http-equiv")
		if !strings.EqualFold(strings.TrimSpace(equiv), "refresh") {
			return true
		}
		content, _ := s.Attr("content")
		target = submatch(f.Refresh, content)
		return target == ""
	})
	return target
}

func submatch(re *regexp.Regexp, s string) string {
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// continueLink returns the href of the first same-domain anchor whose path
// contains marker.
func continueLink(doc *goquery.Document, base *url.URL, marker string) string {
	if marker == "" {
		return ""
	}
	marker = strings.ToLower(marker)

	var target string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return true
		}
		resolved := resolveURL(base, href)
		if resolved == "" || !isSameDomain(base.String(), resolved) {
			return true
		}
		u, err := url.Parse(resolved)
		if err != nil || !strings.Contains(strings.ToLower(u.Path), marker) {
			return true
		}
		target = href
		return false
	})
	return target
}
