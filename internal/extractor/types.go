package extractor

import (
	"context"
	"net/url"
	"time"
)

// Quality labels a discovered direct media URL
type Quality string

const (
	QualitySD Quality = "SD"
	QualityHD Quality = "HD"
)

// FormatMP4 is the only container Facebook serves through the native player URLs
const FormatMP4 = "mp4"

// Placeholders used when a page does not expose the corresponding field
const (
	DefaultTitle     = "Video Facebook"
	DefaultPageName  = "Facebook Page"
	DefaultThumbnail = "https://via.placeholder.com/200x300"
)

// Extractor defines the interface for site extractors
type Extractor interface {
	// Name returns the extractor name (e.g., "facebook")
	Name() string

	// Match returns true if this extractor can handle the URL
	// The URL is pre-parsed so extractors can reliably check the host/domain
	Match(u *url.URL) bool

	// Extract retrieves video information from the URL
	Extract(ctx context.Context, url string) (*DownloadResult, error)
}

// DownloadOption is a single quality of a video.
// URL carries a signed, time-limited token; do not store it.
type DownloadOption struct {
	Quality Quality `json:"quality"`
	Format  string  `json:"format"`
	URL     string  `json:"url"`
}

// DownloadResult is what extraction hands back to the CLI and the HTTP API
type DownloadResult struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message,omitempty"`
	VideoID   string           `json:"video_id"`
	Title     string           `json:"title"`
	PageName  string           `json:"page_name"`
	Thumbnail string           `json:"thumbnail"`
	Downloads []DownloadOption `json:"downloads"`
}

// NewDownloadResult returns an unsuccessful result with every placeholder filled
func NewDownloadResult() *DownloadResult {
	return &DownloadResult{
		Title:     DefaultTitle,
		PageName:  DefaultPageName,
		Thumbnail: DefaultThumbnail,
		Downloads: []DownloadOption{},
	}
}

// Option returns the download option with the given quality
func (r *DownloadResult) Option(q Quality) (DownloadOption, bool) {
	for _, d := range r.Downloads {
		if d.Quality == q {
			return d, true
		}
	}
	return DownloadOption{}, false
}

// Best returns HD when present, otherwise the first option
func (r *DownloadResult) Best() (DownloadOption, bool) {
	if d, ok := r.Option(QualityHD); ok {
		return d, true
	}
	if len(r.Downloads) > 0 {
		return r.Downloads[0], true
	}
	return DownloadOption{}, false
}

// EventKind identifies a progress event
type EventKind string

const (
	EventAttemptStarted EventKind = "attempt_started"
	EventAttemptFailed  EventKind = "attempt_failed"
	EventWaiting        EventKind = "waiting"
	EventMetadata       EventKind = "metadata"
	EventSucceeded      EventKind = "succeeded"
	EventExhausted      EventKind = "exhausted"
)

// Event reports extraction progress as data, leaving formatting to the caller
type Event struct {
	Kind        EventKind
	URL         string
	Attempt     int
	MaxAttempts int
	Delay       time.Duration
	Err         error
	Result      *DownloadResult
}

// EventFunc receives progress events. It is called synchronously.
type EventFunc func(Event)
