package network

import (
	"net/http"
	"net/url"
)

const DefaultCSRFCookie = "csrftoken"

// TokenSource supplies the anti-forgery token sent with each spin.
type TokenSource interface {
	// Token returns the current token, or "" if none is known.
	Token() string
}

// CookieTokenSource reads the token from a cookie set by the authority.
type CookieTokenSource struct {
	Jar  http.CookieJar
	URL  *url.URL
	Name string
}

func (s *CookieTokenSource) Token() string {
	for _, c := range s.Jar.Cookies(s.URL) {
		if c.Name == s.Name {
			return c.Value
		}
	}
	return ""
}

// StaticTokenSource always returns the same token.
type StaticTokenSource string

func (s StaticTokenSource) Token() string {
	return string(s)
}
