package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bkayser/concierge"
	"golang.org/x/sync/singleflight"
)

// DefaultLoginURL is the login page of the authenticated site.
const DefaultLoginURL = "https://reftown.com/login.asp"

// Ensure Authenticator implements concierge.Authenticator at compile time.
var _ concierge.Authenticator = (*Authenticator)(nil)

// Authenticator logs in through the site's login form and caches the
// resulting session for the lifetime of the process.
//
// Concurrent first callers share a single login attempt. A failed attempt
// caches nothing, so a later call may try again.
type Authenticator struct {
	creds     concierge.Credentials
	parser    concierge.FormParser
	rules     []concierge.FieldRule
	loginURL  string
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper

	group   singleflight.Group
	mu      sync.Mutex
	session *concierge.Session
}

// AuthOption configures an Authenticator.
type AuthOption func(*Authenticator)

// WithLoginURL sets the login page URL. Defaults to DefaultLoginURL.
func WithLoginURL(u string) AuthOption {
	return func(a *Authenticator) {
		a.loginURL = u
	}
}

// WithAuthTimeout sets the per-request timeout. Defaults to DefaultTimeout.
func WithAuthTimeout(d time.Duration) AuthOption {
	return func(a *Authenticator) {
		a.timeout = d
	}
}

// WithAuthUserAgent sets the User-Agent carried by the session.
func WithAuthUserAgent(ua string) AuthOption {
	return func(a *Authenticator) {
		a.userAgent = ua
	}
}

// WithAuthTransport sets the round tripper used for login requests.
func WithAuthTransport(t http.RoundTripper) AuthOption {
	return func(a *Authenticator) {
		a.transport = t
	}
}

// WithFieldRules replaces the rules used to fill the login form.
// Defaults to concierge.LoginFieldRules.
func WithFieldRules(rules []concierge.FieldRule) AuthOption {
	return func(a *Authenticator) {
		a.rules = rules
	}
}

// NewAuthenticator creates an Authenticator bound to creds.
func NewAuthenticator(creds concierge.Credentials, parser concierge.FormParser, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		creds:     creds,
		parser:    parser,
		rules:     concierge.LoginFieldRules,
		loginURL:  DefaultLoginURL,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Session returns the cached session, logging in on first use.
// Incomplete credentials fail without any network call. Concurrent callers
// share one login, which outlives the cancellation of any single caller;
// a canceled caller stops waiting and gets its context error.
func (a *Authenticator) Session(ctx context.Context) (*concierge.Session, error) {
	if !a.creds.Complete() {
		return nil, concierge.Errorf(concierge.EUNAUTHORIZED, "credentials not set")
	}
	if s := a.cached(); s != nil {
		return s, nil
	}

	loginCtx := context.WithoutCancel(ctx)
	ch := a.group.DoChan("login", func() (any, error) {
		if s := a.cached(); s != nil {
			return s, nil
		}
		s, err := a.login(loginCtx)
		if err != nil {
			return nil, concierge.Errorf(concierge.EUNAUTHORIZED, "login failed: %v", err)
		}
		a.mu.Lock()
		a.session = s
		a.mu.Unlock()
		return s, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*concierge.Session), nil
	}
}

func (a *Authenticator) cached() *concierge.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// login fetches the login page, fills the password form and submits it.
// Any status below 400 after following redirects counts as success.
func (a *Authenticator) login(ctx context.Context) (*concierge.Session, error) {
	session, err := NewSession(a.userAgent)
	if err != nil {
		return nil, err
	}
	client := &http.Client{
		Jar:       session.Jar,
		Timeout:   a.timeout,
		Transport: a.transport,
	}

	page, pageURL, err := a.fetchLoginPage(ctx, client)
	if err != nil {
		return nil, err
	}

	form, err := a.parser.ParseLoginForm(page, pageURL)
	if err != nil {
		return nil, err
	}

	payload := concierge.BuildLoginPayload(form.Fields, a.creds, a.rules)
	postURL := form.PostURL(a.loginURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, strings.NewReader(payload.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, postURL)
	}

	return session, nil
}

// fetchLoginPage returns the login page body and the URL it was served from.
func (a *Authenticator) fetchLoginPage(ctx context.Context, client *http.Client) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.loginURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, a.loginURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	return string(body), resp.Request.URL.String(), nil
}
