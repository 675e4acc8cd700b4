package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// BrowserFetcher renders the page in headless Chromium.
// Useful when the plain HTTP response is a login interstitial that only
// a real browser gets past.
type BrowserFetcher struct {
	visible     bool
	userDataDir string
	opts        Options
}

// NewBrowserFetcher creates a browser fetcher. userDataDir may be empty.
func NewBrowserFetcher(opts Options, visible bool, userDataDir string) *BrowserFetcher {
	if userDataDir == "" {
		userDataDir = filepath.Join(os.TempDir(), "fbdl-browser")
	}
	return &BrowserFetcher{
		visible:     visible,
		userDataDir: userDataDir,
		opts:        opts.normalized(),
	}
}

// Fetch navigates to url and returns the rendered document
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	l := f.createLauncher(!f.visible)
	defer l.Cleanup()

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("failed to launch browser: %w", err)}
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("failed to connect to browser: %w", err)}
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("failed to open page: %w", err)}
	}
	defer page.Close()

	f.opts.Logger.Debug().Str("url", url).Bool("visible", f.visible).Msg("rendering page in browser")

	if err := page.Navigate(url); err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("failed to navigate: %w", err)}
	}
	if err := page.WaitLoad(); err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("failed waiting for page load: %w", err)}
	}

	html, err := page.HTML()
	if err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("failed to read page HTML: %w", err)}
	}
	if strings.TrimSpace(html) == "" {
		return "", &EmptyPageError{URL: url}
	}

	return html, nil
}

func (f *BrowserFetcher) createLauncher(headless bool) *launcher.Launcher {
	ua := RandomUserAgent(f.opts.UserAgents)
	return launcher.New().
		Headless(headless).
		UserDataDir(f.userDataDir).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("user-agent", ua)
}
