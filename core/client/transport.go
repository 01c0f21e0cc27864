package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core"
)

const (
	HeaderAuthToken = "x-auth-token"
	HeaderRequestID = "X-Request-ID"
)

// Doer sends HTTP requests; *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type TransportOption func(*Transport)

func WithHTTPClient(httpc Doer) TransportOption {
	return func(t *Transport) { t.httpc = httpc }
}

// WithTimeout bounds every request; zero disables the timeout.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *Transport) { t.timeout = d }
}

// WithTrace logs every call (method, uri, payload & response) at debug level.
func WithTrace(logger core.Logger) TransportOption {
	return func(t *Transport) { t.logger = logger }
}

// Transport is the lowest level HTTP wrapper. Its Request never fails:
// every outcome, including network errors, is an Envelope.
type Transport struct {
	baseURL string
	httpc   Doer
	timeout time.Duration
	logger  core.Logger
}

func NewTransport(baseURL string, opts ...TransportOption) *Transport {
	vala.BeginValidation().Validate(
		vala.StringNotEmpty(baseURL, "baseURL"),
	).CheckAndPanic()

	t := &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) BaseURL() string {
	return t.baseURL
}

// Request sends `body` (if any) as JSON to `uri` and returns the parsed envelope.
// A non-empty token is sent in the x-auth-token header.
func (t *Transport) Request(ctx context.Context, method, uri string, body interface{}, token string) Envelope {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return transportError("invalid request", 0, false, errors.Wrap(err, "encoding request body"))
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+uri, bytes.NewReader(payload))
	if err != nil {
		return transportError("invalid request", 0, false, errors.Wrap(err, "creating request"))
	}
	req.Header.Set("accept", "application/json")
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	if token != "" {
		req.Header.Set(HeaderAuthToken, token)
	}
	reqID := uuid.New().String()
	req.Header.Set(HeaderRequestID, reqID)

	env := t.do(req)
	t.trace(method, uri, reqID, payload, env)
	return env
}

func (t *Transport) do(req *http.Request) Envelope {
	resp, err := t.httpc.Do(req)
	if err != nil {
		return networkError(req.Context(), 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(req.Context(), resp.StatusCode, err)
	}

	var env Envelope
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		if resp.StatusCode < http.StatusBadRequest {
			env.Status = resp.StatusCode
			return env
		}
	case b[0] != '{':
		err = errors.New("body is not a JSON object")
	default:
		err = json.Unmarshal(b, &env)
	}
	if err != nil {
		return transportError(errInvalidBody, resp.StatusCode, false, errors.Wrap(err, "decoding response body"))
	}

	env.Status = resp.StatusCode
	if resp.StatusCode >= http.StatusBadRequest && !env.Failed() {
		msg := failureMessage(b)
		if msg == "" {
			msg = statusMessage(resp.StatusCode)
		}
		env.Error = msg
		env.Errors = []string{msg}
	}
	return env
}

// failureMessage reads the `{"message": "..."}` body echo style servers answer errors with.
// It is only consulted for failed statuses; on a 2xx a message is plain data.
func failureMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if len(body) == 0 || json.Unmarshal(body, &m) != nil {
		return ""
	}
	return m.Message
}

func networkError(ctx context.Context, status int, err error) Envelope {
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return transportError(errTimeout, status, true, err)
	case errors.Is(ctx.Err(), context.Canceled):
		return transportError("request canceled", status, false, err)
	default:
		return transportError(errUnreachable, status, true, err)
	}
}

func (t *Transport) trace(method, uri, reqID string, payload []byte, env Envelope) {
	if t.logger == nil {
		return
	}
	t.logger.Debug(
		fmt.Sprintf("MathBombsClient %s => %s", method, uri),
		map[string]interface{}{
			"request_id": reqID,
			"payload":    string(payload),
			"status":     env.Status,
			"data":       string(env.Data),
			"error":      env.Error,
		},
	)
}
