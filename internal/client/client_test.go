package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hikepredict/pkg/types"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	if err != nil { t.Fatalf("new client: %v", err) }
	return c
}

func writeGPX(t *testing.T, name, content string) types.SelectedFile {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil { t.Fatalf("write: %v", err) }
	return types.SelectedFile{Name: name, Size: int64(len(content)), Path: p}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8000", "ftp://x", "http://"} {
		if _, err := New(Options{BaseURL: u}); err == nil {
			t.Fatalf("expected error for %q", u)
		}
	}
}

func TestListTrainingData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/training-data" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" { t.Errorf("missing request id") }
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Ridge Loop","completion_time":87.4}]`))
	})
	items, err := c.ListTrainingData(context.Background())
	if err != nil { t.Fatalf("list: %v", err) }
	if len(items) != 1 || items[0].ID != "1" || items[0].Name != "Ridge Loop" || items[0].CompletionTime != 87.4 {
		t.Fatalf("items=%+v", items)
	}
}

func TestListTrainingDataNonArrayIsEmpty(t *testing.T) {
	for _, body := range []string{"", "null", `{"items":[]}`, `"x"`, "  "} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		items, err := c.ListTrainingData(context.Background())
		if err != nil { t.Fatalf("body %q: %v", body, err) }
		if items == nil || len(items) != 0 { t.Fatalf("body %q: items=%v", body, items) }
	}
}

func TestListTrainingDataMalformedArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2`))
	})
	if _, err := c.ListTrainingData(context.Background()); !IsParse(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestListTrainingDataStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.ListTrainingData(context.Background())
	if !IsStatus(err, http.StatusBadGateway) { t.Fatalf("expected 502 transport error, got %v", err) }
	if err.Error() != ReasonList { t.Fatalf("reason=%q", err.Error()) }
}

func TestDeleteTrainingData(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete { t.Errorf("method=%s", r.Method) }
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.DeleteTrainingData(context.Background(), "a b"); err != nil { t.Fatalf("delete: %v", err) }
	if gotPath != "/training-data/a%20b" { t.Fatalf("path=%q", gotPath) }
	if err := c.DeleteTrainingData(context.Background(), ""); err == nil { t.Fatalf("expected error for empty id") }
}

func TestDeleteTrainingDataNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"training item not found","code":404}`))
	})
	err := c.DeleteTrainingData(context.Background(), "9")
	if !IsStatus(err, http.StatusNotFound) || err.Error() != ReasonDelete {
		t.Fatalf("err=%v", err)
	}
	if !strings.Contains(err.(*TransportError).Err.Error(), "training item not found") {
		t.Fatalf("wrapped err=%v", err.(*TransportError).Err)
	}
}

func TestUploadTrainingFileMultipart(t *testing.T) {
	file := writeGPX(t, `ridge "loop".gpx`, "<gpx>ridge</gpx>")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/train" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil { t.Errorf("form file: %v", err); return }
		defer f.Close()
		b, _ := io.ReadAll(f)
		if string(b) != "<gpx>ridge</gpx>" { t.Errorf("body=%q", b) }
		if hdr.Filename != `ridge "loop".gpx` { t.Errorf("filename=%q", hdr.Filename) }
		if ct := hdr.Header.Get("Content-Type"); ct != GPXContentType { t.Errorf("part content-type=%q", ct) }
		w.WriteHeader(http.StatusOK)
	})
	if err := c.UploadTrainingFile(context.Background(), file); err != nil { t.Fatalf("upload: %v", err) }
}

func TestUploadTrainingFileServerError(t *testing.T) {
	file := writeGPX(t, "r.gpx", "<gpx/>")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := c.UploadTrainingFile(context.Background(), file)
	if !IsTransport(err) || err.Error() != "Failed to upload training file" {
		t.Fatalf("err=%v", err)
	}
}

func TestUploadMissingFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request should not be sent")
	})
	if err := c.UploadTrainingFile(context.Background(), types.SelectedFile{}); err == nil {
		t.Fatalf("expected error for empty selection")
	}
	if err := c.UploadTrainingFile(context.Background(), types.SelectedFile{Name: "x", Path: "/no/such/x.gpx"}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestPredictTime(t *testing.T) {
	file := writeGPX(t, "r.gpx", "<gpx/>")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" { t.Errorf("path=%s", r.URL.Path) }
		if _, _, err := r.FormFile("file"); err != nil { t.Errorf("form file: %v", err) }
		_, _ = w.Write([]byte(`{"estimated_time": 62.0}`))
	})
	got, err := c.PredictTime(context.Background(), file)
	if err != nil { t.Fatalf("predict: %v", err) }
	if got != 62 { t.Fatalf("got %v", got) }
}

func TestPredictTimeParseErrors(t *testing.T) {
	file := writeGPX(t, "r.gpx", "<gpx/>")
	cases := map[string]string{
		`{}`:                          "response missing estimated_time",
		`{"error":"no track points"}`: "no track points",
		`not json`:                    "invalid prediction response",
		`{"estimated_time":"soon"}`:   "invalid prediction response",
	}
	for body, want := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		_, err := c.PredictTime(context.Background(), file)
		if !IsParse(err) || err.Error() != want {
			t.Fatalf("body %q: err=%v want %q", body, err, want)
		}
	}
}

func TestPredictTimeStatusError(t *testing.T) {
	file := writeGPX(t, "r.gpx", "<gpx/>")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.PredictTime(context.Background(), file)
	if !IsStatus(err, http.StatusServiceUnavailable) || err.Error() != ReasonPredict {
		t.Fatalf("err=%v", err)
	}
}

func TestTimeoutBoundsHungRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)
	c, err := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil { t.Fatalf("new: %v", err) }
	start := time.Now()
	_, err = c.ListTrainingData(context.Background())
	if !IsTransport(err) || err.Error() != "request timed out" { t.Fatalf("err=%v", err) }
	if time.Since(start) > 2*time.Second { t.Fatalf("timeout not applied") }
}

func TestCallerCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListTrainingData(ctx)
	if !IsTransport(err) || err.Error() != "request canceled" { t.Fatalf("err=%v", err) }
}

func TestUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c, err := New(Options{BaseURL: url, Timeout: time.Second})
	if err != nil { t.Fatalf("new: %v", err) }
	_, err = c.ListTrainingData(context.Background())
	te, ok := err.(*TransportError)
	if !ok || te.StatusCode != 0 || te.Reason == "" { t.Fatalf("err=%#v", err) }
}

func TestClientMetricsExposed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	if _, err := c.ListTrainingData(context.Background()); err != nil { t.Fatalf("list: %v", err) }
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.Bytes()
	if !bytes.Contains(body, []byte(`hikepredict_client_requests_total{op="list",status="200"}`)) {
		previewLen := len(body)
		if previewLen > 300 {
			previewLen = 300
		}
		t.Fatalf("expected list counter in metrics; got: %q", string(body[:previewLen]))
	}
}
