package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/securegate/sgadmin/cli/internal/metrics"
	"github.com/securegate/sgadmin/common/logging"
	"github.com/securegate/sgadmin/common/middleware"
)

// TokenSource yields the current session token. It is consulted on every
// request, so a login or logout takes effect on the next call.
type TokenSource interface {
	Token() (string, bool)
}

// Transport sends JSON requests to the SecureGate service.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *logging.Logger
	metrics    *metrics.Recorder
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the default client (which has no timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.httpClient = c }
}

func WithLogger(l *logging.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l.With(logging.Component("transport"))
		}
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(t *Transport) { t.metrics = m }
}

// NewTransport creates a Transport for baseURL. tokens may be nil for
// unauthenticated use.
func NewTransport(baseURL string, tokens TokenSource, opts ...Option) *Transport {
	t := &Transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BaseURL returns the service root requests are sent to.
func (t *Transport) BaseURL() string { return t.baseURL }

// Send issues method on endpoint with body JSON-encoded (when non-nil) and
// returns the raw JSON response. Any failure is a *RequestError.
func (t *Transport) Send(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error) {
	ctx, reqID := middleware.EnsureRequestID(ctx)

	start := time.Now()
	raw, status, outcome, err := t.roundTrip(ctx, reqID, endpoint, method, body)
	elapsed := time.Since(start)
	t.metrics.ObserveRequest(endpoint, method, outcome, elapsed)

	if err != nil {
		t.logger.DebugContext(ctx, "request failed",
			logging.Method(method), logging.Endpoint(endpoint), logging.Status(status),
			logging.Duration(elapsed.Milliseconds()), logging.Error(err))
		return nil, &RequestError{Method: method, Endpoint: endpoint, Cause: err}
	}

	t.logger.DebugContext(ctx, "request completed",
		logging.Method(method), logging.Endpoint(endpoint), logging.Status(status),
		logging.Duration(elapsed.Milliseconds()))
	return raw, nil
}

func (t *Transport) roundTrip(ctx context.Context, reqID, endpoint, method string, body any) (json.RawMessage, int, string, error) {
	payload := io.Reader(http.NoBody)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, metrics.OutcomeEncodeError, err
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+endpoint, payload)
	if err != nil {
		return nil, 0, metrics.OutcomeNetworkError, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderRequestID, reqID)
	if t.tokens != nil {
		if token, ok := t.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, 0, metrics.OutcomeNetworkError, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, metrics.OutcomeHTTPError, errUnsuccessfulStatus
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, metrics.OutcomeNetworkError, err
	}
	if !json.Valid(data) {
		return nil, resp.StatusCode, metrics.OutcomeDecodeError, errMalformedBody
	}

	return json.RawMessage(data), resp.StatusCode, metrics.OutcomeOK, nil
}

// sendJSON sends a request and decodes the response into T. A response that
// does not fit T fails the same way as any other request failure.
func sendJSON[T any](ctx context.Context, t *Transport, endpoint, method string, body any) (T, error) {
	var out T
	raw, err := t.Send(ctx, endpoint, method, body)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &RequestError{Method: method, Endpoint: endpoint, Cause: err}
	}
	return out, nil
}
