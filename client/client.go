package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
)

// --------------------------------------------------------------------------
// Client Configuration
// --------------------------------------------------------------------------

// Config holds the connection parameters of a client.
type Config struct {
	// Endpoint is the base URL of the server (e.g. "https://localhost:8000").
	Endpoint string
	// TimeoutSecond limits every single request attempt.
	TimeoutSecond int
	// RetryCount is how many times a failed request is retried.
	RetryCount int
	// Token is an optional bearer token sent with every request.
	Token string
}

// String returns a formatted string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Endpoint: %s, Timeout: %ds, Retries: %d", c.Endpoint, c.TimeoutSecond, c.RetryCount)
}

// --------------------------------------------------------------------------
// Client Type
// --------------------------------------------------------------------------

// Client talks to the /backend endpoint of a running server.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a client for the given configuration.
func New(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSecond) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// Execute sends a single query and returns its result.
func (c *Client) Execute(ctx context.Context, q *query.Query) (*query.Result, error) {
	raw, err := c.send(ctx, q)
	if err != nil {
		return nil, err
	}
	return query.ParseResult(raw)
}

// ExecuteTransaction sends a transaction and returns its result.
func (c *Client) ExecuteTransaction(ctx context.Context, tq *query.TransactionQuery) (*query.TransactionResult, error) {
	raw, err := c.send(ctx, tq)
	if err != nil {
		return nil, err
	}
	var result query.TransactionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// send posts the request body and returns the raw response body. Transport
// errors and 5xx responses are retried up to the configured retry count;
// 4xx rejections are deterministic and returned immediately.
func (c *Client) send(ctx context.Context, req any) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryCount; attempt++ {
		raw, retryable, err := c.post(ctx, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// post performs a single attempt. The second return value reports whether
// a failed attempt is worth retrying.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/backend", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= http.StatusInternalServerError
		return nil, retryable, fmt.Errorf("server returned %s: %s", resp.Status, serverDetail(raw))
	}
	return raw, false, nil
}

// serverDetail extracts the "detail" field of an error response, falling
// back to the raw body.
func serverDetail(raw []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return string(raw)
}
