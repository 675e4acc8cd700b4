package downloader

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		pageName string
		want     string
	}{
		{"title and page", "My Trip", "Travel Page", "My Trip - Travel Page.mp4"},
		{"default page skipped", "My Trip", "Facebook Page", "My Trip.mp4"},
		{"invalid chars", `a/b:c*d?"e"`, "", "a_b_c_d_e.mp4"},
		{"runs collapse", `a<>|b`, "", "a_b.mp4"},
		{"control chars", "a\nb\tc", "", "a_b_c.mp4"},
		{"empty", "", "", "video.mp4"},
		{"only invalid", `///`, "", "video.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFileName(tt.title, tt.pageName, "mp4"); got != tt.want {
				t.Errorf("SafeFileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSafeFileNameLength(t *testing.T) {
	got := SafeFileName(strings.Repeat("é", 150), "", "mp4")
	base := strings.TrimSuffix(got, ".mp4")
	if n := len([]rune(base)); n != maxFileNameLength {
		t.Errorf("base length = %d, want %d", n, maxFileNameLength)
	}
}

func TestStreamToDisk(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 100*1024)
	var gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		w.Write(payload)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "out")
	var last Progress
	path, err := New("test-agent").StreamToDisk(context.Background(), srv.URL, "clip.mp4", dir, func(p Progress) {
		last = p
	})
	if err != nil {
		t.Fatalf("StreamToDisk() error = %v", err)
	}

	if path != filepath.Join(dir, "clip.mp4") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("wrote %d bytes, want %d", len(data), len(payload))
	}
	if _, err := os.Stat(path + ".part"); !os.IsNotExist(err) {
		t.Error("partial file left behind")
	}
	if last.Downloaded != int64(len(payload)) {
		t.Errorf("final progress = %+v", last)
	}
	if gotReferer != "https://www.facebook.com/" {
		t.Errorf("Referer = %q", gotReferer)
	}
}

func TestStreamToDiskHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := New("").StreamToDisk(context.Background(), srv.URL, "clip.mp4", dir, nil)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected HTTP 403 error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "clip.mp4")); !os.IsNotExist(err) {
		t.Error("file should not exist after failed download")
	}
}

func TestProgressHelpers(t *testing.T) {
	p := Progress{Downloaded: 512, Total: 1024, Elapsed: 2 * time.Second}
	if p.Percent() != 0.5 {
		t.Errorf("Percent() = %v", p.Percent())
	}
	if p.Speed() != 256 {
		t.Errorf("Speed() = %v", p.Speed())
	}
	if (Progress{Total: -1}).Percent() != -1 {
		t.Error("unknown total should report -1")
	}

	var buf bytes.Buffer
	PlainProgress(&buf)(p)
	if !strings.Contains(buf.String(), "50.0%") {
		t.Errorf("PlainProgress wrote %q", buf.String())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1024:            "1.0 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(90 * time.Second); got != "1:30" {
		t.Errorf("formatDuration(90s) = %q", got)
	}
	if got := formatDuration(-time.Second); got != "??:??" {
		t.Errorf("formatDuration(-1s) = %q", got)
	}
}
