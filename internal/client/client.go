// Package client talks to a running golinks server's management API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	// BaseURL is where the server listens, e.g. https://go.example.com
	BaseURL string
	// Host, when set, replaces the Host header and so selects the namespace
	Host    string
	HTTP    *http.Client
}

func New(baseURL, host string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Host:    host,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type Link struct {
	Slug        string `json:"slug"`
	RedirectURL string `json:"redirectUrl"`
	Hits        uint64 `json:"hits"`
}

type Created struct {
	Message  string `json:"message"`
	ShortURL string `json:"short_url"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (c *Client) Create(ctx context.Context, slug, target string) (*Created, error) {
	body, err := json.Marshal(map[string]string{"slug": slug, "url": target})
	if err != nil {
		return nil, err
	}

	var out Created
	if err := c.do(ctx, http.MethodPost, "/create", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) List(ctx context.Context) ([]Link, error) {
	out := []Link{}
	if err := c.do(ctx, http.MethodGet, "/list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Stats(ctx context.Context, slug string) (*Link, error) {
	var out Link
	if err := c.do(ctx, http.MethodGet, "/stats/"+slug, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Host != "" {
		req.Host = c.Host
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
