package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bkayser/concierge"
)

// Ensure Resolver implements concierge.Resolver at compile time.
var _ concierge.Resolver = (*Resolver)(nil)

// Resolver fetches pages with automatic redirects disabled and follows
// server-side and client-side redirects itself, up to a hop budget.
type Resolver struct {
	finder    concierge.RedirectFinder
	policy    concierge.RedirectPolicy
	maxHops   int
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxHops sets the number of redirects followed per fetch.
// Defaults to concierge.DefaultMaxHops.
func WithMaxHops(n int) Option {
	return func(r *Resolver) {
		r.maxHops = n
	}
}

// WithTimeout sets the per-request timeout. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithUserAgent sets the User-Agent for anonymous fetches.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// WithPolicy sets the markers that identify client-side redirects.
func WithPolicy(p concierge.RedirectPolicy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithTransport sets the round tripper used for requests.
func WithTransport(t http.RoundTripper) Option {
	return func(r *Resolver) {
		r.transport = t
	}
}

// NewResolver creates a Resolver. A nil finder disables client-side
// redirects.
func NewResolver(finder concierge.RedirectFinder, opts ...Option) *Resolver {
	r := &Resolver{
		finder:    finder,
		policy:    concierge.DefaultRedirectPolicy,
		maxHops:   concierge.DefaultMaxHops,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve issues at most maxHops+1 GET requests and returns the last
// response obtained. Non-2xx statuses are returned, not treated as errors.
func (r *Resolver) Resolve(ctx context.Context, rawURL string, s *concierge.Session) (*concierge.Response, error) {
	client := r.client(s)
	ua := userAgentFor(s, r.userAgent)

	current := rawURL
	for hop := 0; ; hop++ {
		resp, err := r.get(ctx, client, current, ua)
		if err != nil {
			return nil, err
		}
		resp.Requests = hop + 1

		if hop >= r.maxHops {
			return resp, nil
		}
		next, ok := r.nextHop(resp)
		if !ok {
			return resp, nil
		}
		current = next
	}
}

func (r *Resolver) client(s *concierge.Session) *http.Client {
	c := &http.Client{
		Timeout:   r.timeout,
		Transport: r.transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	if s != nil {
		c.Jar = s.Jar
	}
	return c
}

func (r *Resolver) get(ctx context.Context, client *http.Client, rawURL, ua string) (*concierge.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ua)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	return &concierge.Response{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// nextHop returns the redirect target of resp, if any.
func (r *Resolver) nextHop(resp *concierge.Response) (string, bool) {
	if isRedirect(resp.StatusCode) {
		loc := resp.Header.Get("Location")
		if loc == "" {
			return "", false
		}
		return resolveReference(resp.URL, loc)
	}

	if resp.StatusCode != http.StatusOK || r.finder == nil || !r.isIntermediary(resp.URL) {
		return "", false
	}
	return r.finder.FindRedirect(string(resp.Body), resp.URL, r.policy)
}

func (r *Resolver) isIntermediary(rawURL string) bool {
	if r.policy.IntermediaryMarker == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Path), strings.ToLower(r.policy.IntermediaryMarker))
}

func resolveReference(base, ref string) (string, bool) {
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	u, err := b.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	return u.String(), true
}
