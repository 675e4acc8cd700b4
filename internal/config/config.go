package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "fbdl"
	configFileName = "config.yml"
)

// Config holds CLI defaults. The extraction core never reads it directly.
type Config struct {
	OutputDir   string        `yaml:"output_dir"`
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	Timeout     time.Duration `yaml:"timeout"`
	Quality     string        `yaml:"quality"`
	Browser     bool          `yaml:"browser"`
	UserAgents  []string      `yaml:"user_agents,omitempty"`
	ServeAddr   string        `yaml:"serve_addr"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		OutputDir:   "Downloads",
		MaxAttempts: 3,
		RetryDelay:  2 * time.Second,
		Timeout:     30 * time.Second,
		Quality:     "hd",
		ServeAddr:   "127.0.0.1:8080",
	}
}

// path overrides the config location (set by --config)
var path string

// SetPath makes Load and Save use p instead of the default location
func SetPath(p string) {
	path = p
}

// ConfigDir returns the fbdl configuration directory
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// SavePath returns the config file path
func SavePath() string {
	if path != "" {
		return path
	}
	dir, err := ConfigDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(dir, configFileName)
}

// Exists reports whether a config file is present
func Exists() bool {
	_, err := os.Stat(SavePath())
	return err == nil
}

// Load reads the config file, filling unset fields with defaults
func Load() (*Config, error) {
	data, err := os.ReadFile(SavePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrDefault loads the config file, falling back to defaults on any error
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Save writes cfg to SavePath
func Save(cfg *Config) error {
	p := SavePath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Quality == "" {
		c.Quality = d.Quality
	}
	if c.ServeAddr == "" {
		c.ServeAddr = d.ServeAddr
	}
}
