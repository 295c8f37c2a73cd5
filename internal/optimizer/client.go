// Package optimizer talks to the basket optimizer service: it posts enriched
// basket documents to the pricing endpoints and decodes their results.
package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/checkout/internal/ctxlog"
)

// RequestIDHeader carries a per-request id so a run can be matched with the
// optimizer's own logs.
const RequestIDHeader = "X-Request-ID"

// Client posts JSON documents to the optimizer service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL. A nil httpClient
// gets a fresh client with the given timeout; zero means no timeout.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// URL returns the full address of an endpoint.
func (c *Client) URL(endpoint string) string {
	return EndpointURL(c.baseURL, endpoint)
}

// Post sends body as JSON to the endpoint and returns the full response. Any
// HTTP status is a valid response; only transport and encoding failures are
// errors.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*Response, error) {
	url := c.URL(endpoint)
	requestID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("endpoint", endpoint, "url", url, "request_id", requestID)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logger.Debug("Making HTTP request.", "bytes", len(payload))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Received HTTP response.",
		slog.String("status", resp.Status),
		slog.Int("bytes", len(raw)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return &Response{
		Endpoint:   endpoint,
		URL:        url,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       raw,
		RequestID:  requestID,
	}, nil
}
