// Package logging builds the zerolog loggers shared by the client, the TUI and
// the development backend.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects level, output format and destination.
type Options struct {
	Level  string // debug|info|warn|error|off
	Format string // console|json
	Writer io.Writer
}

// ParseLevel maps a level name to a zerolog level. Unknown names fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	case "off", "disabled", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger writing to opts.Writer (stderr when nil).
func New(opts Options) zerolog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if strings.ToLower(opts.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	}
	return zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
}

// OpenFile returns a logger appending to path. The caller closes the file.
func OpenFile(path string, opts Options) (zerolog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	opts.Writer = f
	return New(opts), f, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
