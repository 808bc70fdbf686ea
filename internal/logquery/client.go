package logquery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/voxkit/voxconsole/pkg/cache"
)

// Client queries the external log backend. All requests are bounded by the
// configured timeout; exceeding it is reported like any other network failure.
type Client struct {
	http     *resty.Client
	limitCap int
	cacheTTL time.Duration
}

// NewClient builds a log backend client.
func NewClient(baseURL, token string, timeout time.Duration, limitCap int) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		http.SetAuthToken(token)
	}
	if limitCap <= 0 {
		limitCap = 200
	}
	return &Client{http: http, limitCap: limitCap}
}

// SetPageCacheTTL caches normalized result pages for ttl, keyed by the exact
// query, so identical queries inside the window share one backend round trip.
// Zero disables caching.
func (c *Client) SetPageCacheTTL(ttl time.Duration) {
	c.cacheTTL = ttl
}

// QueryCalls fetches call logs matching the filter.
func (c *Client) QueryCalls(ctx context.Context, filter CallFilter) ([]CallLogRecord, error) {
	filter.Limit = c.clampLimit(filter.Limit)
	params := filter.QueryParams()
	key := pageKey("/v1/logs/calls", params)
	if c.cacheTTL > 0 {
		if cached, ok := cache.Get(ctx, key); ok {
			// A backend that stores serialized values misses here; refetch.
			if calls, ok := cached.([]CallLogRecord); ok {
				return calls, nil
			}
		}
	}

	body, err := c.get(ctx, "/v1/logs/calls", params)
	if err != nil {
		return nil, err
	}
	calls, err := NormalizeCalls(body)
	if err != nil {
		return nil, err
	}
	if c.cacheTTL > 0 {
		_ = cache.Set(ctx, key, calls, c.cacheTTL)
	}
	return calls, nil
}

// QueryEvents fetches event logs matching the filter.
func (c *Client) QueryEvents(ctx context.Context, filter EventFilter) ([]EventLogRecord, error) {
	filter.Limit = c.clampLimit(filter.Limit)
	params := filter.QueryParams()
	key := pageKey("/v1/logs/events", params)
	if c.cacheTTL > 0 {
		if cached, ok := cache.Get(ctx, key); ok {
			if events, ok := cached.([]EventLogRecord); ok {
				return events, nil
			}
		}
	}

	body, err := c.get(ctx, "/v1/logs/events", params)
	if err != nil {
		return nil, err
	}
	events, err := NormalizeEvents(body)
	if err != nil {
		return nil, err
	}
	if c.cacheTTL > 0 {
		_ = cache.Set(ctx, key, events, c.cacheTTL)
	}
	return events, nil
}

// Health probes the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/v1/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("log backend health: status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("log backend: status %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

func (c *Client) clampLimit(limit int) int {
	if limit <= 0 || limit > c.limitCap {
		return c.limitCap
	}
	return limit
}

// pageKey is deterministic for a given path and parameter set.
func pageKey(path string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("logquery:")
	b.WriteString(path)
	for _, k := range keys {
		b.WriteByte('&')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
