package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbitboard/pkg/cache"
	"github.com/matzehuels/orbitboard/pkg/httputil"
)

// Defaults.
const (
	DefaultTTL      = 24 * time.Hour
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
)

// Errors returned by [Fetcher.Fetch]. The first three are caller mistakes;
// ErrUpstream wraps everything that went wrong on the remote side.
var (
	// ErrEmptyURL is returned when no URL is given.
	ErrEmptyURL = errors.New("url is required")

	// ErrInvalidURL is returned for unparsable or non-http(s) URLs.
	ErrInvalidURL = errors.New("invalid url")

	// ErrNotHTML is returned when the page is not served as text/html.
	ErrNotHTML = errors.New("url is not an html page")

	// ErrUpstream wraps fetch failures: network errors and non-2xx status.
	ErrUpstream = errors.New("upstream fetch failed")
)

// Fetcher downloads pages and extracts previews.
type Fetcher struct {
	client   *httputil.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	attempts int
	backoff  time.Duration
	logger   *log.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(c *httputil.Client) Option { return func(f *Fetcher) { f.client = c } }

// WithCache caches previews in c.
func WithCache(c cache.Cache) Option { return func(f *Fetcher) { f.cache = c } }

// WithKeyer sets the cache keyer.
func WithKeyer(k cache.Keyer) Option { return func(f *Fetcher) { f.keyer = k } }

// WithTTL sets how long previews stay cached.
func WithTTL(d time.Duration) Option { return func(f *Fetcher) { f.ttl = d } }

// WithRetry sets the attempt count and initial backoff.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(f *Fetcher) { f.attempts, f.backoff = attempts, backoff }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(f *Fetcher) { f.logger = l } }

// NewFetcher creates a fetcher. Without options it does not cache.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		ttl:      DefaultTTL,
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = httputil.NewClient("preview")
	}
	if f.logger == nil {
		f.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return f
}

// Fetch returns the preview for raw, from cache when possible.
func (f *Fetcher) Fetch(ctx context.Context, raw string) (Preview, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Preview{}, ErrEmptyURL
	}
	u, err := httputil.CheckURL(raw)
	if err != nil {
		return Preview{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	key := f.keyer.PreviewKey(u.String())
	if data, ok, err := f.cache.Get(ctx, key); err != nil {
		f.logger.Warn("preview cache read failed", "url", u, "error", err)
	} else if ok {
		var p Preview
		if json.Unmarshal(data, &p) == nil {
			return p, nil
		}
	}

	var resp *httputil.Response
	err = httputil.Retry(ctx, f.attempts, f.backoff, func() error {
		var err error
		resp, err = f.client.Get(ctx, u.String())
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return Preview{}, ctx.Err()
		}
		return Preview{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !strings.Contains(strings.ToLower(resp.ContentType), "text/html") {
		return Preview{}, fmt.Errorf("%w: content type %q", ErrNotHTML, resp.ContentType)
	}

	p := Extract(resp.Body, resp.URL)
	p.URL = u.String()
	if data, err := json.Marshal(p); err == nil {
		if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
			f.logger.Warn("preview cache write failed", "url", u, "error", err)
		}
	}
	f.logger.Debug("preview fetched", "url", u, "title", p.Title)
	return p, nil
}
