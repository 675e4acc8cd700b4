package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/guiyumin/fbdl/internal/extractor"
)

const (
	maxFileNameLength = 100
	bufferSize        = 32 * 1024
	progressInterval  = 100 * time.Millisecond
)

// Progress is a snapshot of a running download. Total is -1 when unknown.
type Progress struct {
	Downloaded int64
	Total      int64
	Elapsed    time.Duration
}

// Percent returns completion in [0, 1], or -1 when the size is unknown
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return -1
	}
	return float64(p.Downloaded) / float64(p.Total)
}

// Speed returns bytes per second
func (p Progress) Speed() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.Downloaded) / p.Elapsed.Seconds()
}

// ProgressFunc receives progress snapshots
type ProgressFunc func(Progress)

// Downloader streams media files to disk
type Downloader struct {
	client    *http.Client
	userAgent string
}

// New creates a new Downloader. userAgent may be empty.
func New(userAgent string) *Downloader {
	return &Downloader{
		client:    &http.Client{},
		userAgent: userAgent,
	}
}

// StreamToDisk downloads sourceURL into dir/fileName and returns the final path.
// Data goes to a .part file that is renamed once complete.
func (d *Downloader) StreamToDisk(ctx context.Context, sourceURL, fileName, dir string, onProgress ProgressFunc) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	target := filepath.Join(dir, fileName)
	partial := target + ".part"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	req.Header.Set("Referer", "https://www.facebook.com/")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	file, err := os.Create(partial)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	w := &progressWriter{
		total:      resp.ContentLength,
		start:      time.Now(),
		onProgress: onProgress,
	}
	_, copyErr := io.CopyBuffer(file, io.TeeReader(resp.Body, w), make([]byte, bufferSize))
	closeErr := file.Close()
	w.report(true)

	if copyErr != nil {
		os.Remove(partial)
		return "", fmt.Errorf("download interrupted: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(partial)
		return "", fmt.Errorf("failed to write file: %w", closeErr)
	}

	if err := os.Rename(partial, target); err != nil {
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}
	return target, nil
}

type progressWriter struct {
	downloaded int64
	total      int64
	start      time.Time
	last       time.Time
	onProgress ProgressFunc
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.downloaded += int64(len(p))
	w.report(false)
	return len(p), nil
}

func (w *progressWriter) report(force bool) {
	if w.onProgress == nil {
		return
	}
	now := time.Now()
	if !force && now.Sub(w.last) < progressInterval {
		return
	}
	w.last = now
	w.onProgress(Progress{
		Downloaded: w.downloaded,
		Total:      w.total,
		Elapsed:    now.Sub(w.start),
	})
}

// invalidFileNameChars covers Windows, which is the strictest target
const invalidFileNameChars = `<>:"/\|?*`

// SafeFileName builds a filesystem-safe name from a video title and page name.
// Runs of invalid characters become "_", the base is capped at 100 characters.
func SafeFileName(title, pageName, ext string) string {
	name := strings.TrimSpace(title)
	if page := strings.TrimSpace(pageName); page != "" && page != extractor.DefaultPageName {
		name = name + " - " + page
	}

	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r < 32 || r == 127 || strings.ContainsRune(invalidFileNameChars, r)
	})
	name = strings.Join(fields, "_")

	if runes := []rune(name); len(runes) > maxFileNameLength {
		name = string(runes[:maxFileNameLength])
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "video"
	}

	if ext == "" {
		ext = extractor.FormatMP4
	}
	return fmt.Sprintf("%s.%s", name, ext)
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return "??:??"
	}
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	if m > 60 {
		h := m / 60
		m = m % 60
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
