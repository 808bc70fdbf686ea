package logquery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxkit/voxconsole/pkg/cache"
)

func TestClientQueryCalls(t *testing.T) {
	var gotQuery map[string]string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/logs/calls", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"calls":[{"call_id":"c1","start_at":"2026-03-10T09:00:00Z"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token", 0, 100)
	calls, err := client.QueryCalls(context.Background(), CallFilter{Tenant: "acme", Limit: 25})
	require.NoError(t, err)
	require.Len(t, calls, 1)

	assert.Equal(t, "c1", calls[0].CallID)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "acme", gotQuery["tenant"])
	assert.Equal(t, "25", gotQuery["limit"])
}

func TestClientLimitClamped(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, 100)
	_, err := client.QueryEvents(context.Background(), EventFilter{Limit: 9999})
	require.NoError(t, err)
	assert.Equal(t, "100", gotLimit)

	_, err = client.QueryEvents(context.Background(), EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, "100", gotLimit)
}

func TestClientPageCache(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"calls":[{"call_id":"c1","start_at":"2026-03-10T09:00:00Z"}]}`))
	}))
	defer server.Close()

	cache.SetGlobalCache(cache.NewLocalCache(cache.LocalConfig{}))
	t.Cleanup(func() { cache.SetGlobalCache(nil) })

	client := NewClient(server.URL, "", 0, 100)
	client.SetPageCacheTTL(time.Minute)

	filter := CallFilter{Tenant: "cache-acme"}
	first, err := client.QueryCalls(context.Background(), filter)
	require.NoError(t, err)
	second, err := client.QueryCalls(context.Background(), filter)
	require.NoError(t, err)

	// Identical queries inside the window share one round trip.
	assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
	assert.Equal(t, first, second)

	// A different filter is a different page.
	_, err = client.QueryCalls(context.Background(), CallFilter{Tenant: "cache-other"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&requests))
}

func TestClientPageCacheDisabledByDefault(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, 100)
	for i := 0; i < 2; i++ {
		_, err := client.QueryCalls(context.Background(), CallFilter{Tenant: "nocache"})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), atomic.LoadInt64(&requests))
}

func TestClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, 100)
	_, err := client.QueryCalls(context.Background(), CallFilter{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClientHealth(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, 100)
	assert.NoError(t, client.Health(context.Background()))

	healthy = false
	assert.Error(t, client.Health(context.Background()))
}
