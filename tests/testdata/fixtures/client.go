package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Client calls a remote API over HTTP.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a Client for the given base URL.
func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Get fetches one resource by id. It returns an error when the server
// responds with a non-200 status.
func (c *Client) Get(ctx context.Context, id string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}
