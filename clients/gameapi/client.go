package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is a typed HTTP client for the trivia game server. All mutating
// game actions go through it; responses never feed local game state
// directly, the authoritative effect arrives on the next pushed snapshot.
type Client struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

// APIError is a non-2xx response from the game server. The server reports
// rejections as {"error": "..."} bodies.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("game API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("game API returned status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is the server rejecting an unknown room,
// player or question.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// NewClient creates a game server client rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		headers: make(map[string]string),
	}
}

// SetHeader sets a header sent on every request, e.g. Accept-Language.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: decodeServerError(responseBody)}
	}
	return responseBody, nil
}

func decodeServerError(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(body)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.makeRequest(ctx, http.MethodGet, endpoint, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, body io.Reader) ([]byte, error) {
	return c.makeRequest(ctx, http.MethodPost, endpoint, body)
}

func (c *Client) put(ctx context.Context, endpoint string, body io.Reader) ([]byte, error) {
	return c.makeRequest(ctx, http.MethodPut, endpoint, body)
}

func (c *Client) delete(ctx context.Context, endpoint string) ([]byte, error) {
	return c.makeRequest(ctx, http.MethodDelete, endpoint, nil)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return c.post(ctx, endpoint, bytes.NewReader(data))
}

func (c *Client) putJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return c.put(ctx, endpoint, bytes.NewReader(data))
}

func queryString(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return "?" + values.Encode()
}
