package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hikepredict/internal/backend"
	"hikepredict/internal/client"
	"hikepredict/internal/httpapi"
	"hikepredict/internal/picker"
	"hikepredict/internal/store"
)

const ridgeLoop = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="e2e" xmlns="http://www.topografix.com/GPX/1/1">
  <metadata><name>Ridge Loop</name></metadata>
  <trk><trkseg>
    <trkpt lat="0" lon="0"><ele>100</ele><time>2024-05-01T08:00:00Z</time></trkpt>
    <trkpt lat="0" lon="0.01"><ele>200</ele><time>2024-05-01T08:45:00Z</time></trkpt>
    <trkpt lat="0" lon="0.02"><ele>150</ele><time>2024-05-01T09:27:24Z</time></trkpt>
  </trkseg></trk>
</gpx>`

// newBackend serves the in-memory backend through the real HTTP layer.
func newBackend(t *testing.T) (*httptest.Server, *backend.Service) {
	t.Helper()
	svc := backend.New(backend.Options{})
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return srv, svc
}

// newStore wires a store to baseURL with a picker that always returns file.
func newStore(t *testing.T, baseURL string, file string) *store.Store {
	t.Helper()
	c, err := client.New(client.Options{BaseURL: baseURL, Timeout: 5 * time.Second})
	if err != nil { t.Fatalf("client: %v", err) }
	return store.New(&store.Executor{API: c, Picker: picker.Path(file)})
}

func writeRoute(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil { t.Fatalf("write route: %v", err) }
	return p
}

// stubServer answers the backend endpoints with fixed handlers; nil ones fail the test.
type stubServer struct {
	list, del, train, predict http.HandlerFunc
	hits                      map[string]int
}

func (s *stubServer) start(t *testing.T) string {
	t.Helper()
	s.hits = map[string]int{}
	mux := http.NewServeMux()
	route := func(name string, h *http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.hits[name]++
			if *h == nil {
				t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotImplemented)
				return
			}
			(*h)(w, r)
		}
	}
	mux.HandleFunc("/training-data", route("list", &s.list))
	mux.HandleFunc("/training-data/", route("delete", &s.del))
	mux.HandleFunc("/train", route("train", &s.train))
	mux.HandleFunc("/predict", route("predict", &s.predict))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func dispatchAll(s *store.Store, actions ...store.Action) store.State {
	var st store.State
	for _, a := range actions {
		st = s.Dispatch(context.Background(), a)
	}
	return st
}

