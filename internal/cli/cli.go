// Package cli is the hikepredict command line: scripted list, delete, train and
// predict commands plus the interactive route screen.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hikepredict/internal/client"
	"hikepredict/internal/config"
	"hikepredict/internal/httpapi"
	"hikepredict/internal/logging"
	"hikepredict/internal/store"
	"hikepredict/internal/tui"
)

// fnRunTUI is swapped out in tests.
var fnRunTUI = tui.Run

// usageError marks errors caused by wrong invocation (exit code 2).
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func isUsage(err error) bool {
	var ue usageError
	return errors.As(err, &ue)
}

// session is everything one command needs, built from the resolved config.
type session struct {
	cfg     config.Config
	log     zerolog.Logger
	client  *client.Client
	closers []io.Closer
	metrics *http.Server
}

// open resolves configuration from the command's flags and builds the client.
// interactive routes logs away from the terminal.
func open(cmd *cobra.Command, interactive bool) (*session, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Resolve(path, cmd.Flags())
	if err != nil {
		return nil, usageError{msg: err.Error()}
	}
	s := &session{cfg: cfg}
	opts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Writer: cmd.ErrOrStderr()}
	switch {
	case cfg.LogFile != "":
		l, c, err := logging.OpenFile(cfg.LogFile, opts)
		if err != nil {
			return nil, err
		}
		s.log = l
		s.closers = append(s.closers, c)
	case interactive:
		s.log = zerolog.Nop()
	default:
		s.log = logging.New(opts)
	}

	s.client, err = client.New(client.Options{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout(), Logger: &s.log})
	if err != nil {
		s.close()
		return nil, usageError{msg: err.Error()}
	}
	if cfg.MetricsAddr != "" {
		s.metrics = &http.Server{Addr: cfg.MetricsAddr, Handler: httpapi.NewMetricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			s.log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
			if err := s.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}
	s.log.Debug().Str("base_url", cfg.BaseURL).Dur("timeout", cfg.Timeout()).Msg("session ready")
	return s, nil
}

func (s *session) executor() *store.Executor {
	return &store.Executor{API: s.client, Log: s.log.With().Str("component", "store").Logger()}
}

func (s *session) close() {
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = s.metrics.Shutdown(ctx)
		cancel()
	}
	for _, c := range s.closers {
		_ = c.Close()
	}
}

// run executes args against the command tree and maps the outcome to an exit
// code: 0 success, 1 failed operation, 2 usage error.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := buildRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, err.Error())
		if isUsage(err) {
			return 2
		}
		return 1
	}
	return 0
}

// MainWithArgs runs the CLI with args and returns the process exit code.
func MainWithArgs(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, os.Stdout, os.Stderr)
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/hikepredict.
func Main() int { return MainWithArgs(os.Args[1:]) }
