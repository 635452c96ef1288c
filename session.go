package concierge

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Credentials identify an account on the authenticated site.
type Credentials struct {
	Username string
	Password string
}

// Complete reports whether both username and password are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// Session is an authenticated transport handle. It is bound to one set of
// credentials and stays valid for the lifetime of the process.
type Session struct {
	Jar       http.CookieJar
	UserAgent string
}

// Authenticator yields the authenticated session for its credentials.
type Authenticator interface {
	// Session returns the cached session, logging in on first use.
	// Returns EUNAUTHORIZED when credentials are missing or login fails.
	// Callers treat any error as "no session available".
	Session(ctx context.Context) (*Session, error)
}

// FormField is one <input> element of an HTML form.
type FormField struct {
	Name     string
	Type     string
	Value    string
	HasValue bool
	Checked  bool
}

// Kind returns the lower-cased input type, defaulting to "text".
func (f FormField) Kind() string {
	if f.Type == "" {
		return "text"
	}
	return strings.ToLower(f.Type)
}

// LoginForm is the password-bearing form found on a login page.
type LoginForm struct {
	// Action is the absolute URL the form submits to.
	Action string
	Method string
	Fields []FormField
}

// PostURL returns the URL to POST credentials to. Forms that do not declare
// POST are submitted to loginURL instead.
func (f *LoginForm) PostURL(loginURL string) string {
	if strings.EqualFold(strings.TrimSpace(f.Method), http.MethodPost) && f.Action != "" {
		return f.Action
	}
	return loginURL
}

// FormParser locates the login form in an HTML page.
type FormParser interface {
	// ParseLoginForm returns the first form containing a password input.
	// Returns ENOTFOUND if the page has no such form.
	ParseLoginForm(html, pageURL string) (*LoginForm, error)
}

// usernameTokens are substrings that mark an input name as a username field.
var usernameTokens = []string{"user", "email", "login", "account", "name", "uid", "member"}

// IsUsernameField reports whether an input name looks like a username or
// email field.
func IsUsernameField(name string) bool {
	n := strings.ToLower(name)
	if strings.Contains(n, "pass") {
		return false
	}
	for _, tok := range usernameTokens {
		if strings.Contains(n, tok) {
			return true
		}
	}
	return false
}

// FieldRule assigns a login payload value to matching form fields.
type FieldRule struct {
	Name  string
	Match func(f FormField) bool

	// Value returns the value to submit. A false second result leaves the
	// field out of the payload.
	Value func(f FormField, c Credentials) (string, bool)
}

// LoginFieldRules is the ordered policy used to fill a login form.
// The first matching rule decides a field's value.
var LoginFieldRules = []FieldRule{
	{
		Name:  "password",
		Match: func(f FormField) bool { return f.Kind() == "password" },
		Value: func(_ FormField, c Credentials) (string, bool) { return c.Password, true },
	},
	{
		Name: "username",
		Match: func(f FormField) bool {
			return isTextField(f) && IsUsernameField(f.Name)
		},
		Value: func(_ FormField, c Credentials) (string, bool) { return c.Username, true },
	},
	{
		Name: "passthrough",
		Match: func(f FormField) bool {
			switch f.Kind() {
			case "hidden", "submit", "image":
				return true
			}
			return false
		},
		Value: declaredValue,
	},
	{
		Name: "checkable",
		Match: func(f FormField) bool {
			return f.Kind() == "checkbox" || f.Kind() == "radio"
		},
		Value: func(f FormField, _ Credentials) (string, bool) {
			if !f.Checked {
				return "", false
			}
			if f.HasValue {
				return f.Value, true
			}
			return "on", true
		},
	},
	{
		Name:  "default",
		Match: func(FormField) bool { return true },
		Value: declaredValue,
	},
}

func declaredValue(f FormField, _ Credentials) (string, bool) {
	return f.Value, f.HasValue
}

func isTextField(f FormField) bool {
	k := f.Kind()
	return k == "text" || k == "email"
}

// BuildLoginPayload fills form fields with credentials using rules.
//
// A second pass guarantees that every password input carries the password
// and, when no username-like field was found, that the first unassigned
// text or email input carries the username.
func BuildLoginPayload(fields []FormField, c Credentials, rules []FieldRule) url.Values {
	payload := url.Values{}
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		for _, r := range rules {
			if !r.Match(f) {
				continue
			}
			if v, ok := r.Value(f, c); ok {
				payload.Set(f.Name, v)
			}
			break
		}
	}

	guessed := hasUsernameKey(payload)
	for _, f := range fields {
		if f.Name == "" || payload.Has(f.Name) {
			continue
		}
		switch {
		case f.Kind() == "password":
			payload.Set(f.Name, c.Password)
		case isTextField(f) && (IsUsernameField(f.Name) || !guessed):
			payload.Set(f.Name, c.Username)
			guessed = true
		}
	}
	return payload
}

func hasUsernameKey(payload url.Values) bool {
	for k := range payload {
		if IsUsernameField(k) {
			return true
		}
	}
	return false
}
