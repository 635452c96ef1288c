package concierge

import (
	"context"
	"net/http"
)

// DefaultMaxHops is the default number of redirects followed per fetch.
const DefaultMaxHops = 3

// Response is the final response of a resolved fetch.
type Response struct {
	// URL is the URL the final response was obtained from.
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte

	// Requests is the number of requests issued to obtain the response.
	Requests int
}

// OK reports whether the response has a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Resolver fetches a URL, following server-side and client-side redirects
// up to a fixed hop budget.
type Resolver interface {
	// Resolve returns the last response obtained. A nil session fetches
	// anonymously. Running out of hops is not an error; the returned page
	// may still be an intermediary.
	Resolve(ctx context.Context, rawURL string, s *Session) (*Response, error)
}

// RedirectPolicy holds the URL markers that identify client-side redirects.
type RedirectPolicy struct {
	// IntermediaryMarker appears in the path of link-forwarding pages whose
	// body carries the real target.
	IntermediaryMarker string

	// ContinueMarker appears in the path of "continue" anchors on
	// intermediary pages.
	ContinueMarker string
}

// DefaultRedirectPolicy matches link-forwarding pages such as /forward.asp
// and their /continue links.
var DefaultRedirectPolicy = RedirectPolicy{
	IntermediaryMarker: "forward",
	ContinueMarker:     "continue",
}

// RedirectFinder locates a client-side redirect target in an HTML body.
type RedirectFinder interface {
	// FindRedirect returns the absolute target URL, trying meta refresh,
	// JavaScript location assignment, a loose url= token in a content
	// attribute and finally a same-domain continue anchor.
	FindRedirect(body, pageURL string, policy RedirectPolicy) (string, bool)
}
