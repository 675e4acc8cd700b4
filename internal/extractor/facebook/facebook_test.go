package facebook

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/guiyumin/fbdl/internal/extractor"
	"github.com/guiyumin/fbdl/internal/fetch"
	"github.com/rs/zerolog"
)

// stubFetcher replays responses in order, repeating the last one
type stubFetcher struct {
	pages []string
	errs  []error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	i := s.calls
	s.calls++
	if i >= len(s.pages) {
		i = len(s.pages) - 1
	}
	return s.pages[i], s.errs[i]
}

const videoPage = `<html><head>
<meta property="og:title" content="1K views_My Trip_extra">
</head><body><script>{"browser_native_hd_url":"https:\/\/cdn.example\/v.mp4"}</script></body></html>`

func newTestExtractor(f fetch.Fetcher, events *[]extractor.Event) *Extractor {
	return New(Options{
		Fetcher:    f,
		RetryDelay: time.Millisecond,
		Logger:     zerolog.Nop(),
		OnEvent: func(ev extractor.Event) {
			if events != nil {
				*events = append(*events, ev)
			}
		},
	})
}

func countKind(events []extractor.Event, kind extractor.EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestExtractEndToEnd(t *testing.T) {
	f := &stubFetcher{pages: []string{videoPage}, errs: []error{nil}}

	result, err := newTestExtractor(f, nil).Extract(context.Background(), "https://www.facebook.com/watch/?v=555")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !result.Success {
		t.Error("expected Success")
	}
	if result.Title != "My Trip" {
		t.Errorf("Title = %q, want %q", result.Title, "My Trip")
	}
	if result.VideoID != "555" {
		t.Errorf("VideoID = %q", result.VideoID)
	}
	if len(result.Downloads) != 1 {
		t.Fatalf("Downloads = %+v", result.Downloads)
	}
	got := result.Downloads[0]
	if got.Quality != extractor.QualityHD || got.URL != "https://cdn.example/v.mp4" || got.Format != "mp4" {
		t.Errorf("Downloads[0] = %+v", got)
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls)
	}
}

func TestFetchWithRetryExhausted(t *testing.T) {
	netErr := &fetch.NetworkError{URL: "u", StatusCode: 500}
	f := &stubFetcher{pages: []string{""}, errs: []error{netErr}}
	var events []extractor.Event

	start := time.Now()
	_, err := newTestExtractor(f, &events).FetchWithRetry(context.Background(), "https://www.facebook.com/watch/?v=1", 3)

	var exhausted *ExhaustedRetriesError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedRetriesError, got %T (%v)", err, err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(err, netErr) {
		t.Error("exhausted error should wrap the last attempt error")
	}
	if f.calls != 3 {
		t.Errorf("fetch calls = %d, want 3", f.calls)
	}
	if n := countKind(events, extractor.EventWaiting); n != 2 {
		t.Errorf("waits = %d, want 2", n)
	}
	if n := countKind(events, extractor.EventAttemptFailed); n != 3 {
		t.Errorf("failed attempts = %d, want 3", n)
	}
	if n := countKind(events, extractor.EventExhausted); n != 1 {
		t.Errorf("exhausted events = %d, want 1", n)
	}
	if elapsed := time.Since(start); elapsed < 2*time.Millisecond {
		t.Errorf("expected delays between attempts, elapsed %v", elapsed)
	}
}

func TestFetchWithRetryNoLinks(t *testing.T) {
	f := &stubFetcher{pages: []string{"<html>Log in</html>"}, errs: []error{nil}}

	_, err := newTestExtractor(f, nil).FetchWithRetry(context.Background(), "https://www.facebook.com/x", 2)

	var noLinks *NoLinksFoundError
	if !errors.As(err, &noLinks) {
		t.Fatalf("expected wrapped NoLinksFoundError, got %v", err)
	}
	if f.calls != 2 {
		t.Errorf("fetch calls = %d, want 2", f.calls)
	}
}

func TestFetchWithRetryRecovers(t *testing.T) {
	f := &stubFetcher{
		pages: []string{"", "<html>interstitial</html>", videoPage},
		errs:  []error{&fetch.EmptyPageError{}, nil, nil},
	}
	var events []extractor.Event

	result, err := newTestExtractor(f, &events).FetchWithRetry(context.Background(), "https://www.facebook.com/x", 5)
	if err != nil {
		t.Fatalf("FetchWithRetry() error = %v", err)
	}
	if f.calls != 3 {
		t.Errorf("fetch calls = %d, want 3 (short-circuit on success)", f.calls)
	}
	if !result.Success {
		t.Error("expected Success")
	}
	if n := countKind(events, extractor.EventSucceeded); n != 1 {
		t.Errorf("succeeded events = %d", n)
	}
	if last := events[len(events)-1]; last.Kind != extractor.EventSucceeded || last.Attempt != 3 {
		t.Errorf("last event = %+v", last)
	}
}

func TestFetchWithRetryStopsOnUnexpectedError(t *testing.T) {
	unexpected := errors.New("fetcher misconfigured")
	f := &stubFetcher{pages: []string{""}, errs: []error{unexpected}}
	var events []extractor.Event

	_, err := newTestExtractor(f, &events).FetchWithRetry(context.Background(), "https://www.facebook.com/x", 3)
	if !errors.Is(err, unexpected) {
		t.Fatalf("expected wrapped fetcher error, got %v", err)
	}
	var exhausted *ExhaustedRetriesError
	if errors.As(err, &exhausted) {
		t.Error("unexpected error should not be reported as exhausted retries")
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls)
	}
	if n := countKind(events, extractor.EventWaiting); n != 0 {
		t.Errorf("waits = %d, want 0", n)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&fetch.NetworkError{StatusCode: 500}, true},
		{&fetch.EmptyPageError{}, true},
		{&NoLinksFoundError{}, true},
		{errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := retryable(tt.err); got != tt.want {
			t.Errorf("retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestFetchWithRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &stubFetcher{pages: []string{""}, errs: []error{&fetch.NetworkError{StatusCode: 503}}}

	e := New(Options{
		Fetcher:    f,
		RetryDelay: time.Hour,
		Logger:     zerolog.Nop(),
		OnEvent: func(ev extractor.Event) {
			if ev.Kind == extractor.EventWaiting {
				cancel()
			}
		},
	})

	_, err := e.FetchWithRetry(ctx, "https://www.facebook.com/x", 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls)
	}
}

func TestMatch(t *testing.T) {
	e := New(Options{Logger: zerolog.Nop()})

	tests := map[string]bool{
		"https://www.facebook.com/watch/?v=1": true,
		"https://m.facebook.com/x":            true,
		"https://fb.watch/abc":                true,
		"https://notfacebook.com/x":           false,
		"https://youtube.com/watch?v=1":       false,
	}
	for raw, want := range tests {
		u, _ := url.Parse(raw)
		if got := e.Match(u); got != want {
			t.Errorf("Match(%q) = %v, want %v", raw, got, want)
		}
	}
}
