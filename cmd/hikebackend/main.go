package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"hikepredict/internal/backend"
	"hikepredict/internal/config"
	"hikepredict/internal/httpapi"
	"hikepredict/internal/logging"
)

func main() {
	d := config.Defaults()
	fs := pflag.NewFlagSet("hikebackend", pflag.ExitOnError)
	cfgPath := fs.String("config", "", "Config file (.yaml, .yml, .json, .toml)")
	fs.String("addr", d.Backend.Addr, "HTTP listen address, e.g. :8000 (HIKEPREDICT_BACKEND_ADDR)")
	fs.StringSlice("cors-origins", d.Backend.CORSOrigins, "Allowed CORS origins")
	fs.Int64("max-upload-bytes", d.Backend.MaxUploadBytes, "Maximum size of an uploaded route file")
	fs.Float64("default-pace", d.Backend.DefaultPace, "Minutes per effort kilometer before any training data exists")
	fs.String("log-level", d.LogLevel, "Log level: debug|info|warn|error|off")
	fs.String("log-format", d.LogFormat, "Log format: console|json")
	fs.String("log-file", "", "Write logs to this file instead of stderr")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Resolve(*cfgPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	opts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}
	log := logging.New(opts)
	if cfg.LogFile != "" {
		l, closer, err := logging.OpenFile(cfg.LogFile, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("open log file")
		}
		defer closer.Close()
		log = l
	}

	if err := serve(cfg, log); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func serve(cfg config.Config, log zerolog.Logger) error {
	svc := backend.New(backend.Options{DefaultPace: cfg.Backend.DefaultPace, Logger: &log})
	httpapi.SetLogger(log)
	httpapi.SetMaxUploadBytes(cfg.Backend.MaxUploadBytes)
	httpapi.SetCORSOrigins(cfg.Backend.CORSOrigins)

	srv := &http.Server{
		Addr:              cfg.Backend.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Backend.Addr).Strs("cors_origins", cfg.Backend.CORSOrigins).Msg("hikebackend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-errc:
		if ok {
			return err
		}
		return nil
	case <-stop:
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("hikebackend stopped")
	return nil
}
