// Package remote is the REST client for the PingMe API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"pingme/internal/models"
	"pingme/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// DefaultBaseURL is where the API listens in local development.
const DefaultBaseURL = "http://localhost:3001"

// Client issues exactly one request per call. There is no retry and no
// client-side timeout; cancel through the context.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient returns a client for baseURL, falling back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// SetToken sets the bearer token sent with every request. Empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// StatusError carries an unexpected HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// call describes one request.
type call struct {
	op       string
	method   string
	path     string
	body     any
	out      any
	resource string
	id       any
}

func (c *Client) do(ctx context.Context, rc call) (err error) {
	ctx, correlationID := observability.EnsureCorrelationID(ctx)
	ctx, span := observability.StartClientSpan(ctx, rc.op, rc.method, rc.path)
	done := observability.TrackRemote(rc.op)
	defer func() {
		done(err)
		observability.EndSpan(span, err)
	}()

	var reader io.Reader
	if rc.body != nil {
		raw, mErr := json.Marshal(rc.body)
		if mErr != nil {
			return models.NewInternalError(fmt.Errorf("encode %s request: %w", rc.op, mErr))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, c.BaseURL+rc.path, reader)
	if err != nil {
		return models.NewNetworkError(rc.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", correlationID)
	if rc.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	observability.InjectTraceHeaders(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.NewNetworkError(rc.op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	observability.Logger.DebugContext(ctx, "remote request",
		"operation", rc.op,
		"method", rc.method,
		"path", rc.path,
		"status", resp.StatusCode,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		if resp.StatusCode == http.StatusNotFound && rc.resource != "" {
			notFound := models.NewNotFoundError(rc.resource, rc.id)
			notFound.Err = statusErr
			return notFound
		}
		return models.NewNetworkError(rc.op, statusErr)
	}

	if rc.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(rc.out); err != nil {
		return models.NewNetworkError(rc.op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
