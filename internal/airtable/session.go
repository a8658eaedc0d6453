package airtable

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

var newSessionFunc = newSession

type session struct {
	http *http.Client
	base http.RoundTripper
}

// newSession builds the bearer-authenticated HTTP client. The oauth2
// transport adds the Authorization header; headerTransport adds the fixed
// JSON headers underneath it.
func newSession(apiKey string, timeout time.Duration, userAgent string, base http.RoundTripper) *session {
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}
	inner := &http.Client{Transport: &headerTransport{base: base, userAgent: userAgent}}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, inner)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = timeout
	// Redirects are reported as upstream errors, never followed: a followed
	// 302 turns a POST into a GET and carries the bearer token to the new host.
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &session{http: hc, base: base}
}

func (s *session) close() {
	if ci, ok := s.base.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}

type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		r.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(r)
}
