package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/guiyumin/fbdl/internal/config"
	"github.com/guiyumin/fbdl/internal/downloader"
	"github.com/guiyumin/fbdl/internal/extractor"
	"github.com/guiyumin/fbdl/internal/extractor/facebook"
	"github.com/guiyumin/fbdl/internal/fetch"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app wires config, the extractor registry and the downloader for one CLI run.
// URLs are processed one at a time.
type app struct {
	cfg        *config.Config
	logger     zerolog.Logger
	registry   *extractor.Registry
	downloader *downloader.Downloader
	tty        bool

	// qualityChosen is true when --quality was given explicitly
	qualityChosen bool

	// onEvent receives events of the extraction in progress
	onEvent extractor.EventFunc
}

func newApp(cmd *cobra.Command) *app {
	cfg := config.LoadOrDefault()
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if quality != "" {
		cfg.Quality = quality
	}
	if attempts > 0 {
		cfg.MaxAttempts = attempts
	}
	if cmd.Flags().Changed("browser") {
		cfg.Browser = useBrowser
	}

	a := &app{
		cfg:           cfg,
		logger:        newLogger(verbose, zerolog.Disabled),
		tty:           term.IsTerminal(int(os.Stdout.Fd())),
		qualityChosen: cmd.Flags().Changed("quality"),
	}

	a.downloader = downloader.New(fetch.RandomUserAgent(cfg.UserAgents))
	a.registry = newRegistry(cfg, a.logger, func(ev extractor.Event) {
		if a.onEvent != nil {
			a.onEvent(ev)
		}
	})
	return a
}

// newLogger writes human-readable logs to stderr. fallback is the level used
// without --verbose.
func newLogger(verbose bool, fallback zerolog.Level) zerolog.Logger {
	level := fallback
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().
		Logger()
}

// newRegistry builds the page fetcher selected by cfg and registers the
// Facebook extractor on top of it
func newRegistry(cfg *config.Config, logger zerolog.Logger, onEvent extractor.EventFunc) *extractor.Registry {
	fo := fetch.Options{
		UserAgents: cfg.UserAgents,
		Timeout:    cfg.Timeout,
		Logger:     logger,
	}

	var f fetch.Fetcher
	if cfg.Browser {
		userDataDir := ""
		if dir, err := config.ConfigDir(); err == nil {
			userDataDir = filepath.Join(dir, "browser")
		}
		f = fetch.NewBrowserFetcher(fo, visible, userDataDir)
	} else {
		f = fetch.NewHTTPFetcher(fo)
	}

	reg := extractor.NewRegistry()
	facebook.Register(reg, facebook.New(facebook.Options{
		Fetcher:     f,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelay,
		Logger:      logger,
		OnEvent:     onEvent,
	}))
	return reg
}

// process extracts one URL and downloads the chosen quality.
// prompt is non-nil in interactive mode and is used to ask for a quality.
func (a *app) process(ctx context.Context, rawURL string, prompt *bufio.Reader) error {
	rawURL = strings.TrimSpace(rawURL)

	ext, err := a.registry.Match(rawURL)
	if err != nil {
		if jsonOut {
			printJSONFailure(err)
		}
		return err
	}

	if !jsonOut {
		color.Yellow("Processing URL: %s", rawURL)
		color.Blue("Retrieving Facebook video information...")
	}

	result, err := a.extract(ctx, ext, rawURL)
	if err != nil {
		if jsonOut {
			printJSONFailure(err)
		}
		return err
	}

	if jsonOut {
		return printJSON(result)
	}

	printResult(result)
	if info {
		return nil
	}

	option := a.chooseOption(result, prompt)
	fileName := downloader.SafeFileName(result.Title, result.PageName, option.Format)

	color.Yellow("Downloading (%s): %s", option.Quality, fileName)
	path, err := a.download(ctx, option.URL, fileName)
	if err != nil {
		return fmt.Errorf("download error: %w", err)
	}

	color.Green("Download successful: %s", path)
	return nil
}

func (a *app) extract(ctx context.Context, ext extractor.Extractor, rawURL string) (*extractor.DownloadResult, error) {
	defer func() { a.onEvent = nil }()

	if a.tty && !jsonOut && !verbose {
		return runExtractWithSpinner(ctx, ext, rawURL, a)
	}
	if !jsonOut {
		a.onEvent = printEvent
	}
	return ext.Extract(ctx, rawURL)
}

func (a *app) download(ctx context.Context, sourceURL, fileName string) (string, error) {
	if a.tty {
		return downloader.RunDownloadTUI(ctx, a.downloader, sourceURL, fileName, a.cfg.OutputDir)
	}

	path, err := a.downloader.StreamToDisk(ctx, sourceURL, fileName, a.cfg.OutputDir, downloader.PlainProgress(os.Stdout))
	fmt.Println()
	return path, err
}

func (a *app) chooseOption(result *extractor.DownloadResult, prompt *bufio.Reader) extractor.DownloadOption {
	if prompt != nil && !a.qualityChosen && len(result.Downloads) > 1 {
		return promptQuality(prompt, result, a.cfg.Quality)
	}
	return selectOption(result, a.cfg.Quality)
}

// selectOption returns the preferred quality when available, otherwise the best one
func selectOption(result *extractor.DownloadResult, preferred string) extractor.DownloadOption {
	if d, ok := result.Option(extractor.Quality(strings.ToUpper(strings.TrimSpace(preferred)))); ok {
		return d
	}
	d, _ := result.Best()
	return d
}

// promptQuality asks which option to download. Enter keeps the preferred quality.
func promptQuality(reader *bufio.Reader, result *extractor.DownloadResult, preferred string) extractor.DownloadOption {
	def := selectOption(result, preferred)

	fmt.Println()
	for i, d := range result.Downloads {
		fmt.Printf("  [%d] %s (%s)\n", i+1, d.Quality, d.Format)
	}
	color.New(color.FgCyan).Printf("Choose quality [1-%d] (Enter for %s): ", len(result.Downloads), def.Quality)

	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	for i, d := range result.Downloads {
		if line == fmt.Sprint(i+1) || strings.EqualFold(line, string(d.Quality)) {
			return d
		}
	}
	return def
}

func printJSON(result *extractor.DownloadResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printJSONFailure(err error) {
	failed := extractor.NewDownloadResult()
	failed.Message = err.Error()
	_ = printJSON(failed)
}
