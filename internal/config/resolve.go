package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"hikepredict/internal/common/fsutil"
)

// EnvPrefix is prepended to every environment override, e.g. HIKEPREDICT_BASE_URL.
const EnvPrefix = "HIKEPREDICT"

// flagKeys maps config keys to the CLI flag that overrides them.
var flagKeys = map[string]string{
	"base_url":                 "base-url",
	"timeout_seconds":          "timeout",
	"log_level":                "log-level",
	"log_format":               "log-format",
	"log_file":                 "log-file",
	"metrics_addr":             "metrics-addr",
	"backend.addr":             "addr",
	"backend.cors_origins":     "cors-origins",
	"backend.max_upload_bytes": "max-upload-bytes",
	"backend.default_pace":     "default-pace",
}

// Resolve layers configuration sources: defaults, then the optional file at
// path, then HIKEPREDICT_* environment variables, then flags the user set
// explicitly. flags may be nil.
func Resolve(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Defaults()
	if path != "" {
		p, err := fsutil.ExpandHome(path)
		if err != nil {
			return cfg, err
		}
		if cfg, err = loadOnto(p, cfg); err != nil {
			return cfg, err
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range flagKeys {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", key, err)
		}
		if flags == nil {
			continue
		}
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return cfg, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if v.IsSet("base_url") {
		cfg.BaseURL = strings.TrimRight(v.GetString("base_url"), "/")
	}
	if v.IsSet("timeout_seconds") {
		cfg.TimeoutSeconds = v.GetInt("timeout_seconds")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("log_format") {
		cfg.LogFormat = v.GetString("log_format")
	}
	if v.IsSet("log_file") {
		cfg.LogFile = v.GetString("log_file")
	}
	if v.IsSet("metrics_addr") {
		cfg.MetricsAddr = v.GetString("metrics_addr")
	}
	if v.IsSet("backend.addr") {
		cfg.Backend.Addr = v.GetString("backend.addr")
	}
	if v.IsSet("backend.cors_origins") {
		cfg.Backend.CORSOrigins = splitCSV(v.GetStringSlice("backend.cors_origins"))
	}
	if v.IsSet("backend.max_upload_bytes") {
		cfg.Backend.MaxUploadBytes = v.GetInt64("backend.max_upload_bytes")
	}
	if v.IsSet("backend.default_pace") {
		cfg.Backend.DefaultPace = v.GetFloat64("backend.default_pace")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, cfg.Validate()
}

// splitCSV flattens values that arrive as a single comma-separated string from the environment.
func splitCSV(in []string) []string {
	var out []string
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
