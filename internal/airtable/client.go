package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/roivaz/airtable-mcp/internal/logging"
)

const (
	DefaultBaseURL   = "https://api.airtable.com/v0"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "airtable-mcp/1.0"

	// APIKeyEnv is read when New receives an empty key.
	APIKeyEnv = "AIRTABLE_API_KEY"
)

// Client talks to the Airtable Web API. It is safe for concurrent use; the
// underlying HTTP session is created on first use and shared by all calls
// until Close.
type Client struct {
	apiKey    string
	baseURL   string
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
	log       logging.Logger

	mu   sync.Mutex
	sess *session
}

// Option configures a Client at construction.
type Option func(*Client)

// WithBaseURL points the client at another API origin; trailing slashes are dropped.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithTransport sets the RoundTripper the session's auth and header layers
// wrap. Defaults to a clone of http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithLogger sets the logger used for debug request tracing.
func WithLogger(log logging.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithUserAgent overrides the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a Client authenticated with apiKey, or with the value of
// AIRTABLE_API_KEY when apiKey is empty. No request is made.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errMissingAPIKey()
	}
	c := &Client{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	c.log = c.log.WithName("airtable")
	return c, nil
}

func (c *Client) session() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		c.sess = newSessionFunc(c.apiKey, c.timeout, c.userAgent, c.transport)
		c.log.Debug("http session created", "baseURL", c.baseURL, "timeout", c.timeout)
	}
	return c.sess
}

// Close releases the HTTP session. It is a no-op when no session is open, and
// a later call on the Client opens a new one.
func (c *Client) Close() error {
	c.mu.Lock()
	sess := c.sess
	c.sess = nil
	c.mu.Unlock()
	if sess == nil {
		return nil
	}
	sess.close()
	c.log.Debug("http session closed")
	return nil
}

// do sends one request and decodes a 2xx JSON payload into out. Non-2xx
// responses are mapped by statusError before anything is decoded.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "Invalid request: fields are not JSON encodable", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return transportError(method, path, c.timeout, err)
	}

	start := time.Now()
	resp, err := c.session().http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "elapsed", time.Since(start), "error", err.Error())
		return transportError(method, path, c.timeout, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(method, path, c.timeout, err)
	}
	c.log.Debug("request completed", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindUpstream, StatusCode: resp.StatusCode, Message: "Airtable API error: undecodable response body", Err: err}
	}
	return nil
}

func joinPath(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
