// Package client talks to the route prediction backend: listing and deleting
// training items, uploading GPX files for training and asking for a predicted
// completion time.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hikepredict/pkg/types"
)

// GPXContentType labels the uploaded file part.
const GPXContentType = "application/gpx+xml"

// Failure reasons reported when the backend answers with a non-2xx status.
const (
	ReasonList    = "Failed to fetch training data"
	ReasonDelete  = "Failed to delete training data"
	ReasonTrain   = "Failed to upload training file"
	ReasonPredict = "Failed to predict time"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Version is sent in the User-Agent header.
var Version = "dev"

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL        string
	Timeout        time.Duration // per request; 0 disables
	ConnectTimeout time.Duration
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
}

// Client issues the four backend calls. It holds no UI state and is safe for
// concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

// New validates the base URL and builds a client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid base url %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		connect := opts.ConnectTimeout
		if connect <= 0 {
			connect = 5 * time.Second
		}
		tr := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connect,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		// Deadlines come from the request context, see send.
		hc = &http.Client{Transport: tr, Timeout: 0}
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Client{
		baseURL:    base,
		timeout:    opts.Timeout,
		httpClient: hc,
		log:        log.With().Str("component", "client").Logger(),
	}, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// ListTrainingData fetches the current training items. A 2xx body that is
// empty or not a JSON array yields an empty, non-nil slice.
func (c *Client) ListTrainingData(ctx context.Context) ([]types.TrainingItem, error) {
	body, err := c.send(ctx, "list", http.MethodGet, "/training-data", nil, "", ReasonList)
	if err != nil {
		return nil, err
	}
	items := []types.TrainingItem{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			c.log.Warn().Str("op", "list").Msg("training data response is not an array, treating as empty")
		}
		return items, nil
	}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &ParseError{Op: "list", Reason: "invalid training data response", Err: err}
	}
	if items == nil {
		items = []types.TrainingItem{}
	}
	return items, nil
}

// DeleteTrainingData removes the training item with the given id.
func (c *Client) DeleteTrainingData(ctx context.Context, id types.ItemID) error {
	if id == "" {
		return &TransportError{Op: "delete", Reason: "missing training item id"}
	}
	_, err := c.send(ctx, "delete", http.MethodDelete, "/training-data/"+url.PathEscape(id.String()), nil, "", ReasonDelete)
	return err
}

// UploadTrainingFile sends file as labeled training data.
func (c *Client) UploadTrainingFile(ctx context.Context, file types.SelectedFile) error {
	body, ct, err := multipartBody(file)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, "train", http.MethodPost, "/train", body, ct, ReasonTrain)
	return err
}

// PredictTime submits file and returns the estimated completion time in minutes.
func (c *Client) PredictTime(ctx context.Context, file types.SelectedFile) (float64, error) {
	body, ct, err := multipartBody(file)
	if err != nil {
		return 0, err
	}
	raw, err := c.send(ctx, "predict", http.MethodPost, "/predict", body, ct, ReasonPredict)
	if err != nil {
		return 0, err
	}
	var pr types.PredictionResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return 0, &ParseError{Op: "predict", Reason: "invalid prediction response", Err: err}
	}
	if pr.EstimatedTime == nil {
		if pr.Error != "" {
			return 0, &ParseError{Op: "predict", Reason: pr.Error}
		}
		return 0, &ParseError{Op: "predict", Reason: "response missing estimated_time"}
	}
	return *pr.EstimatedTime, nil
}

// send performs one request and returns the response body of a 2xx answer.
func (c *Client) send(ctx context.Context, op, method, path string, body io.Reader, contentType, failReason string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &TransportError{Op: op, Reason: err.Error(), Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hikepredict/"+Version)
	rid := uuid.NewString()
	req.Header.Set("X-Request-ID", rid)

	inflightRequests.WithLabelValues(op).Inc()
	defer inflightRequests.WithLabelValues(op).Dec()
	start := time.Now()
	c.log.Debug().Str("op", op).Str("method", method).Str("path", path).Str("request_id", rid).Msg("request start")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observe(op, 0, start)
		reason := transportReason(err)
		c.log.Warn().Str("op", op).Str("request_id", rid).Dur("dur", time.Since(start)).Err(err).Msg("request failed")
		return nil, &TransportError{Op: op, Reason: reason, Err: err}
	}
	defer resp.Body.Close()
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	observe(op, resp.StatusCode, start)

	ev := c.log.Debug()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ev = c.log.Warn()
	}
	ev.Str("op", op).Str("request_id", rid).Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("request end")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Reason: failReason, Err: statusError(resp.StatusCode, raw)}
	}
	if readErr != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Reason: transportReason(readErr), Err: readErr}
	}
	return raw, nil
}

func observe(op string, code int, start time.Time) {
	s := statusLabel(code)
	requestsTotal.WithLabelValues(op, s).Inc()
	requestDuration.WithLabelValues(op, s).Observe(time.Since(start).Seconds())
}

// transportReason turns a transport failure into a short display string.
func transportReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}

// statusError keeps the backend's error text for logs and errors.As callers.
func statusError(code int, body []byte) error {
	var er types.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return fmt.Errorf("status %d: %s", code, er.Error)
	}
	return fmt.Errorf("status %d", code)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody reads file into a multipart form with a single "file" part.
func multipartBody(file types.SelectedFile) (io.Reader, string, error) {
	if file.Path == "" {
		return nil, "", fmt.Errorf("no file selected")
	}
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer f.Close()

	name := file.Name
	if name == "" {
		name = "route.gpx"
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", GPXContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", file.Name, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
