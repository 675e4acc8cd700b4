// Package facebook extracts direct SD/HD video links and page metadata from
// Facebook video pages.
package facebook

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/guiyumin/fbdl/internal/extractor"
	"github.com/guiyumin/fbdl/internal/fetch"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
)

// Hosts are the domains the extractor is registered for
var Hosts = []string{"facebook.com", "fb.com", "fb.watch"}

// Options configures an Extractor
type Options struct {
	Fetcher     fetch.Fetcher
	MaxAttempts int
	RetryDelay  time.Duration
	Logger      zerolog.Logger
	OnEvent     extractor.EventFunc
}

// Extractor handles Facebook video pages
type Extractor struct {
	fetcher     fetch.Fetcher
	maxAttempts int
	retryDelay  time.Duration
	logger      zerolog.Logger
	onEvent     extractor.EventFunc
}

// New creates an extractor. A zero Options uses the HTTP fetcher, three
// attempts and a two second delay.
func New(opts Options) *Extractor {
	if opts.Fetcher == nil {
		fo := fetch.DefaultOptions()
		fo.Logger = opts.Logger
		opts.Fetcher = fetch.NewHTTPFetcher(fo)
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &Extractor{
		fetcher:     opts.Fetcher,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		logger:      opts.Logger,
		onEvent:     opts.OnEvent,
	}
}

// Register adds e to r under every Facebook host
func Register(r *extractor.Registry, e *Extractor) {
	r.Register(e, Hosts...)
}

func (e *Extractor) Name() string {
	return "facebook"
}

func (e *Extractor) Match(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	for _, h := range Hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Extract retrieves video information using the configured attempt budget
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*extractor.DownloadResult, error) {
	return e.FetchWithRetry(ctx, rawURL, e.maxAttempts)
}

// extractPage runs one fetch and both extractors
func (e *Extractor) extractPage(ctx context.Context, rawURL string, attempt int) (*extractor.DownloadResult, error) {
	html, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	md := ExtractMetadata(html, rawURL)
	result := extractor.NewDownloadResult()
	result.VideoID = md.VideoID
	result.Title = md.Title
	result.PageName = md.PageName
	result.Thumbnail = md.Thumbnail
	result.Downloads = ExtractLinks(html)
	result.Success = len(result.Downloads) > 0

	e.emit(extractor.Event{Kind: extractor.EventMetadata, URL: rawURL, Attempt: attempt, Result: result})

	if !result.Success {
		return nil, &NoLinksFoundError{URL: rawURL}
	}
	return result, nil
}

func (e *Extractor) emit(ev extractor.Event) {
	if e.onEvent != nil {
		e.onEvent(ev)
	}
}
