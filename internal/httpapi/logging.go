package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer. Nop until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l.With().Str("component", "http").Logger() }

func logger() *zerolog.Logger { return &zlog }

// requestLogger logs request start at debug and completion at info.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := middleware.GetReqID(r.Context())
		zlog.Debug().Str("method", r.Method).Str("path", r.URL.Path).Str("request_id", rid).Msg("request start")
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ev := zlog.Info()
		if status >= 500 {
			ev = zlog.Warn()
		}
		ev.Str("method", r.Method).Str("path", r.URL.Path).Str("request_id", rid).
			Int("status", status).Int("bytes", ww.BytesWritten()).Dur("dur", time.Since(start)).Msg("request end")
	})
}
