package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the client, the TUI and the dev backend.
// Resolve starts from Defaults and decodes the config file over them.
type Config struct {
	BaseURL        string  `json:"base_url" yaml:"base_url" toml:"base_url"`
	TimeoutSeconds int     `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	LogLevel       string  `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat      string  `json:"log_format" yaml:"log_format" toml:"log_format"`
	LogFile        string  `json:"log_file" yaml:"log_file" toml:"log_file"`
	MetricsAddr    string  `json:"metrics_addr" yaml:"metrics_addr" toml:"metrics_addr"`
	Backend        Backend `json:"backend" yaml:"backend" toml:"backend"`
}

// Backend configures the in-memory development backend.
type Backend struct {
	Addr           string   `json:"addr" yaml:"addr" toml:"addr"`
	CORSOrigins    []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	MaxUploadBytes int64    `json:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	DefaultPace    float64  `json:"default_pace" yaml:"default_pace" toml:"default_pace"` // minutes per km
}

// Defaults returns the configuration used when nothing else is specified.
func Defaults() Config {
	return Config{
		BaseURL:        "http://localhost:8000",
		TimeoutSeconds: 30,
		LogLevel:       "info",
		LogFormat:      "console",
		Backend: Backend{
			Addr:           ":8000",
			CORSOrigins:    []string{"*"},
			MaxUploadBytes: 10 << 20,
			DefaultPace:    15,
		},
	}
}

// Timeout is the per-request deadline applied by the client. Zero disables it.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the fields the client cannot work without.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url: missing host")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be >= 0")
	}
	if c.Backend.MaxUploadBytes < 0 {
		return fmt.Errorf("backend.max_upload_bytes must be >= 0")
	}
	return nil
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	return loadOnto(path, Config{})
}

// loadOnto decodes the file at path over cfg. Keys the file omits keep their
// value from cfg; keys it sets win even when zero, so timeout_seconds: 0
// disables the deadline.
func loadOnto(path string, cfg Config) (Config, error) {
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
