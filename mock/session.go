package mock

import (
	"context"

	"github.com/bkayser/concierge"
)

// Compile-time interface verification.
var (
	_ concierge.Authenticator = (*Authenticator)(nil)
	_ concierge.FormParser    = (*FormParser)(nil)
)

// Authenticator is a mock implementation of concierge.Authenticator.
type Authenticator struct {
	SessionFn func(ctx context.Context) (*concierge.Session, error)
}

func (a *Authenticator) Session(ctx context.Context) (*concierge.Session, error) {
	return a.SessionFn(ctx)
}

// FormParser is a mock implementation of concierge.FormParser.
type FormParser struct {
	ParseLoginFormFn func(html, pageURL string) (*concierge.LoginForm, error)
}

func (p *FormParser) ParseLoginForm(html, pageURL string) (*concierge.LoginForm, error) {
	return p.ParseLoginFormFn(html, pageURL)
}
