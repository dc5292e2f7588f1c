// Package upstream is the thin client for the dashboard's third-party
// collaborators (weather service, infrastructure status, and the like).
// It fetches JSON and hands it back untouched: no retries, no caching, no
// field mapping. Errors in this layer are cosmetic for the dashboard;
// nothing here participates in access control.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no URL is configured for a collaborator.
var ErrNotConfigured = fmt.Errorf("upstream not configured")

const defaultTimeout = 10 * time.Second

// Client fetches JSON from upstream services.
type Client struct {
	http *http.Client
}

// NewClient returns a client with a bounded request timeout.
func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: defaultTimeout},
	}
}

// FetchJSON GETs the URL and decodes the response body as arbitrary JSON.
func (c *Client) FetchJSON(ctx context.Context, url string) (any, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream %s returned %d", url, resp.StatusCode)
	}
	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding upstream response: %w", err)
	}
	return body, nil
}
