package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// TransportError means the remote could not be reached or did not
// produce a usable response: dial failure, timeout, 5xx, bad body.
// Callers may silently substitute a local fallback for it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote unreachable: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AppError means the remote answered and rejected the request (4xx).
// It must propagate to the caller: a wrong password is still a wrong
// password when the fallback tables are available.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("remote rejected request: %d %s", e.Status, e.Message)
}

// envelope matches the API response wrapper (pkg/response).
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Client performs single-attempt JSON calls against the marketplace
// API under a short timeout. No retries; fail fast and let the caller
// fall back so the UI stays responsive.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) PutJSON(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, in, out)
}

func (c *Client) PatchJSON(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPatch, path, in, out)
}

func (c *Client) DeleteJSON(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if c.Logger != nil {
			c.Logger.WithError(err).WithField("op", op).Debug("gateway transport failure")
		}
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	var env envelope
	if len(raw) > 0 {
		// Non-envelope bodies (plain arrays, proxies) fall through with
		// Data unset; treat the whole body as the payload below.
		_ = json.Unmarshal(raw, &env)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// ok
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &AppError{Status: resp.StatusCode, Message: msg}
	default:
		return &TransportError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	payload := raw
	if env.Data != nil {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return nil
}
