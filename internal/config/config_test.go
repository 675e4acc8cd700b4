package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func useTempPath(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "nested", "config.yml")
	SetPath(p)
	t.Cleanup(func() { SetPath("") })
	return p
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	useTempPath(t)

	if Exists() {
		t.Fatal("Exists() = true before Save")
	}
	cfg := LoadOrDefault()
	if cfg.MaxAttempts != 3 || cfg.RetryDelay != 2*time.Second || cfg.Timeout != 30*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestSaveLoad(t *testing.T) {
	useTempPath(t)

	cfg := Default()
	cfg.OutputDir = "/tmp/videos"
	cfg.MaxAttempts = 5
	cfg.RetryDelay = 500 * time.Millisecond
	cfg.Quality = "sd"
	cfg.UserAgents = []string{"ua-1"}

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.OutputDir != "/tmp/videos" || got.MaxAttempts != 5 || got.RetryDelay != 500*time.Millisecond || got.Quality != "sd" {
		t.Errorf("Load() = %+v", got)
	}
	if len(got.UserAgents) != 1 || got.UserAgents[0] != "ua-1" {
		t.Errorf("UserAgents = %v", got.UserAgents)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	p := useTempPath(t)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("retry_delay: 3s\nmax_attempts: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RetryDelay != 3*time.Second {
		t.Errorf("RetryDelay = %v", cfg.RetryDelay)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want default 3", cfg.MaxAttempts)
	}
	if cfg.OutputDir != "Downloads" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	p := useTempPath(t)
	os.MkdirAll(filepath.Dir(p), 0755)
	os.WriteFile(p, []byte("max_attempts: [oops"), 0644)

	if _, err := Load(); err == nil {
		t.Error("expected parse error")
	}
	if cfg := LoadOrDefault(); cfg.MaxAttempts != 3 {
		t.Errorf("LoadOrDefault() = %+v", cfg)
	}
}
