// Package client fetches dashboard data from a skycast API server.
//
// Every failure mode (transport error, non-2xx status, undecodable body,
// or an envelope with success=false) is reported as an error wrapping
// [ErrRefreshFailed], so callers can treat them uniformly.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"skycast/api"
)

const maxResponseBodySize = 1 << 20 // 1MB

// ErrRefreshFailed is wrapped by every error returned from Client.
var ErrRefreshFailed = errors.New("refresh failed")

// Client talks to GET /api/weather and GET /api/news.
//
// No whole-request timeout is set unless one is configured: a hung
// request only stalls the caller waiting on it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a client for the server at baseURL. A zero timeout means
// requests are bounded only by the caller's context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: timeout,
	}
}

// Weather fetches current conditions.
func (c *Client) Weather(ctx context.Context) (*api.Weather, error) {
	env, err := c.get(ctx, "/api/weather")
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: missing weather data", ErrRefreshFailed)
	}
	var w api.Weather
	if err := json.Unmarshal(env.Data, &w); err != nil {
		return nil, fmt.Errorf("%w: decoding weather: %v", ErrRefreshFailed, err)
	}
	return &w, nil
}

// News fetches the current headline list. An empty list is a valid result.
func (c *Client) News(ctx context.Context) ([]api.Article, error) {
	env, err := c.get(ctx, "/api/news")
	if err != nil {
		return nil, err
	}
	articles := []api.Article{}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &articles); err != nil {
			return nil, fmt.Errorf("%w: decoding news: %v", ErrRefreshFailed, err)
		}
	}
	return articles, nil
}

func (c *Client) get(ctx context.Context, path string) (*api.Envelope, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrRefreshFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// keep context errors inspectable with errors.Is
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, ctxErr)
		}
		return nil, fmt.Errorf("%w: request failed: %v", ErrRefreshFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP error! status: %d", ErrRefreshFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrRefreshFailed, err)
	}

	var env api.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decoding envelope: %v", ErrRefreshFailed, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, fmt.Errorf("%w: %s", ErrRefreshFailed, msg)
	}
	return &env, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if t, ok := c.httpClient.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}
