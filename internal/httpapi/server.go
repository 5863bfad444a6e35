// Package httpapi exposes a route prediction Service over HTTP: the training
// data listing, deletion, GPX uploads for training and prediction, and the
// health and metrics endpoints.
package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hikepredict/internal/backend"
	"hikepredict/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	List() []types.TrainingItem
	Delete(id string) error
	Train(filename string, r io.Reader) (types.TrainingItem, error)
	Predict(r io.Reader) (float64, error)
	Ready() bool
}

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 1 << 20

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if len(corsAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/training-data", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.List())
	})

	r.Delete("/training-data/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := svc.Delete(id); err != nil {
			// Deleting an absent item is not an error; clients re-list afterwards.
			if backend.IsNotFound(err) {
				logger().Debug().Str("id", id).Msg("delete of unknown training item")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/train", func(w http.ResponseWriter, r *http.Request) {
		f, name, ok := formFile(w, r, "train")
		if !ok {
			return
		}
		defer f.Close()
		item, err := svc.Train(name, f)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	})

	r.Post("/predict", func(w http.ResponseWriter, r *http.Request) {
		f, _, ok := formFile(w, r, "predict")
		if !ok {
			return
		}
		defer f.Close()
		est, err := svc.Predict(f)
		if err != nil {
			// Unusable routes are reported in a 200 body, not as a status.
			writeJSON(w, http.StatusOK, types.PredictionResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, types.PredictionResponse{EstimatedTime: &est})
	})

	r.Get("/healthz", healthz)

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// formFile extracts the "file" part of a multipart upload. On failure it has
// already written the error response.
func formFile(w http.ResponseWriter, r *http.Request, endpoint string) (io.ReadCloser, string, bool) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "multipart/form-data") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be multipart/form-data")
		return nil, "", false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return nil, "", false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return nil, "", false
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "file is required")
		return nil, "", false
	}
	uploadBytes.WithLabelValues(endpoint).Observe(float64(hdr.Size))
	logger().Debug().Str("endpoint", endpoint).Str("filename", hdr.Filename).Int64("size", hdr.Size).
		Str("request_id", middleware.GetReqID(r.Context())).Msg("upload received")
	return f, hdr.Filename, true
}

// writeServiceError maps well-known service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var he HTTPError
	if errors.As(err, &he) {
		writeJSONError(w, he.StatusCode(), he.Error())
		return
	}
	writeJSONError(w, http.StatusInternalServerError, err.Error())
}
