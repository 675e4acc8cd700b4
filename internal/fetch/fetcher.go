// Package fetch loads Facebook pages the way a desktop or mobile browser would.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single page load
const DefaultTimeout = 30 * time.Second

// DefaultUserAgents is the rotation pool used when Options.UserAgents is empty
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Mobile/15E148 Safari/604.1",
}

// DefaultHeaders mimic a top-level browser navigation to facebook.com
var DefaultHeaders = map[string]string{
	"Referer":                   "https://www.facebook.com/",
	"DNT":                       "1",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
	"Accept-Language":           "en-GB,en;q=0.9,tr-TR;q=0.8,tr;q=0.7,en-US;q=0.6",
	"Cache-Control":             "max-age=0",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
}

// Fetcher returns the raw HTML of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// NetworkError reports a transport failure or a non-2xx response
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unable to load page: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("unable to load page: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// EmptyPageError reports a successful response without a body
type EmptyPageError struct {
	URL string
}

func (e *EmptyPageError) Error() string {
	return "unable to load page content: empty body"
}

// IsRetryable reports whether err is a page-load failure worth another attempt
func IsRetryable(err error) bool {
	var netErr *NetworkError
	var emptyErr *EmptyPageError
	return errors.As(err, &netErr) || errors.As(err, &emptyErr)
}

// Options configures header rotation and timeouts.
// Values are copied at construction and never mutated afterwards.
type Options struct {
	UserAgents []string
	Headers    map[string]string
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// DefaultOptions returns the browser-like defaults
func DefaultOptions() Options {
	return Options{
		UserAgents: DefaultUserAgents,
		Headers:    DefaultHeaders,
		Timeout:    DefaultTimeout,
		Logger:     zerolog.Nop(),
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if len(o.UserAgents) == 0 {
		o.UserAgents = d.UserAgents
	}
	if len(o.Headers) == 0 {
		o.Headers = d.Headers
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}

	agents := make([]string, len(o.UserAgents))
	copy(agents, o.UserAgents)
	o.UserAgents = agents

	headers := make(map[string]string, len(o.Headers))
	for k, v := range o.Headers {
		headers[k] = v
	}
	o.Headers = headers
	return o
}

// HTTPFetcher loads pages with net/http and a rotated browser header set
type HTTPFetcher struct {
	client *http.Client
	opts   Options
}

// NewHTTPFetcher creates a fetcher with its own reusable client
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	opts = opts.normalized()
	return &HTTPFetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

// UserAgent picks one agent from the pool uniformly at random
func (f *HTTPFetcher) UserAgent() string {
	return RandomUserAgent(f.opts.UserAgents)
}

// RandomUserAgent picks one agent from pool uniformly at random.
// An empty pool falls back to DefaultUserAgents.
func RandomUserAgent(pool []string) string {
	if len(pool) == 0 {
		pool = DefaultUserAgents
	}
	return pool[rand.Intn(len(pool))]
}

// Header builds a fresh header set for one request
func (f *HTTPFetcher) Header() http.Header {
	h := make(http.Header, len(f.opts.Headers)+1)
	for k, v := range f.opts.Headers {
		h.Set(k, v)
	}
	h.Set("User-Agent", f.UserAgent())
	return h
}

// Fetch loads url and returns its body
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header = f.Header()

	f.opts.Logger.Debug().Str("url", url).Str("user_agent", req.Header.Get("User-Agent")).Msg("fetching page")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused by the next attempt
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	html := string(body)
	if strings.TrimSpace(html) == "" {
		return "", &EmptyPageError{URL: url}
	}

	f.opts.Logger.Debug().Str("url", url).Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("page loaded")
	return html, nil
}
