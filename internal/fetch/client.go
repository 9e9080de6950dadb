// Package fetch provides the outbound HTTP surface shared by the provider
// pipeline and the thumbnail pipeline.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrStatus marks a non-2xx response. Callers treat it like any other fetch
// failure; it exists so logs can tell transport errors from rejections.
var ErrStatus = errors.New("unexpected response status")

// Client wraps an http.Client with the per-request user agent handling the
// providers need.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a Client whose requests time out after the given
// duration. Zero falls back to 20 seconds.
func NewClient(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get fetches a URL and returns the response body. Non-2xx responses return
// an error wrapping ErrStatus.
func (c *Client) Get(ctx context.Context, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, url)
	}

	return body, nil
}
