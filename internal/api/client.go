package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client is a thin HTTP client for the studio API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given base URL (e.g. http://host:port).
// token is attached as a bearer credential when non-empty. A timeout of
// zero or less falls back to the default.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// Labs lists labs visible to the caller.
func (c *Client) Labs(ctx context.Context) (LabsResponse, error) {
	var resp LabsResponse
	if err := c.getJSON(ctx, "/labs", &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Nodes fetches the bulk node-state snapshot for a lab.
func (c *Client) Nodes(ctx context.Context, labID string) (NodesResponse, error) {
	var resp NodesResponse
	endpoint := "/nodes?lab_id=" + url.QueryEscape(labID)
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Hosts fetches the current host resource snapshot.
func (c *Client) Hosts(ctx context.Context) (HostsResponse, error) {
	var resp HostsResponse
	if err := c.getJSON(ctx, "/hosts", &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	if err := c.getJSON(ctx, "/health", &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("request failed: %s: %s", res.Status, msg)
		}
		return fmt.Errorf("request failed: %s", res.Status)
	}

	decoder := json.NewDecoder(res.Body)
	return decoder.Decode(out)
}
