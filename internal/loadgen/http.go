package loadgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// HTTPClient wraps http.Client with a base URL and an optional rate limiter
type HTTPClient struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// newHTTPClient creates a new HTTP client. rps <= 0 leaves requests unpaced.
func newHTTPClient(baseURL string, timeout time.Duration, rps float64, burst int) *HTTPClient {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Get performs a GET request and returns the status and body.
func (c *HTTPClient) Get(ctx context.Context, path string) (int, []byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with JSON body and returns the status and body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (int, []byte, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, jsonData)
}

// GetJSON performs a GET request and decodes a 200 response into out.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, out any) error {
	status, body, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	return decodeStatus(status, body, out, http.StatusOK)
}

// PostJSON performs a POST request and decodes the response into out when
// its status is one of accept.
func (c *HTTPClient) PostJSON(ctx context.Context, path string, in, out any, accept ...int) (int, error) {
	status, body, err := c.Post(ctx, path, in)
	if err != nil {
		return 0, err
	}
	return status, decodeStatus(status, body, out, accept...)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func decodeStatus(status int, body []byte, out any, accept ...int) error {
	for _, want := range accept {
		if status != want {
			continue
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: HTTP %d: %s", ErrUnexpectedStatus, status, bytes.TrimSpace(body))
}
