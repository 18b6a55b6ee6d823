package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/orbitboard/pkg/buildinfo"
	"github.com/matzehuels/orbitboard/pkg/observability"
)

// Client defaults.
const (
	DefaultTimeout   = 8 * time.Second
	DefaultBodyLimit = 1 << 20
)

// ErrNetwork marks transport failures: DNS, refused connections, timeouts.
var ErrNetwork = errors.New("network error")

// ErrScheme is returned for URLs that are not http or https.
var ErrScheme = errors.New("unsupported url scheme")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
}

// Response is a fetched body with the metadata callers need after
// redirects.
type Response struct {
	// URL is the final URL after redirects.
	URL         *url.URL
	ContentType string
	Body        []byte
}

// Client performs bounded GET requests.
type Client struct {
	http      *http.Client
	service   string
	bodyLimit int64
	userAgent string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithBodyLimit caps how many bytes of a response body are read.
func WithBodyLimit(n int64) ClientOption {
	return func(c *Client) { c.bodyLimit = n }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a client. service tags the observability events.
func NewClient(service string, opts ...ClientOption) *Client {
	c := &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		service:   service,
		bodyLimit: DefaultBodyLimit,
		userAgent: buildinfo.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckURL parses raw and accepts only absolute http(s) URLs.
func CheckURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrScheme, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse url: missing host in %q", raw)
	}
	return u, nil
}

// Get fetches raw and reads at most the configured body limit.
// Transport failures, 5xx and 429 responses come back wrapped in
// [RetryableError].
func (c *Client) Get(ctx context.Context, raw string) (*Response, error) {
	if _, err := CheckURL(raw); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, c.service, http.MethodGet, raw)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, c.service, http.MethodGet, raw, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, c.service, http.MethodGet, raw, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{URL: raw, Status: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, Retryable(serr)
		}
		return nil, serr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.bodyLimit))
	if err != nil {
		return nil, Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	return &Response{
		URL:         resp.Request.URL,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
