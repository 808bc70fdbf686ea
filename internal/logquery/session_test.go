package logquery

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resultSink struct {
	mu      sync.Mutex
	results []Result
	errs    []error
}

func (s *resultSink) onResult(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

func (s *resultSink) onError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *resultSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results), len(s.errs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Fail(t, "condition not met in time")
}

func TestSessionDebouncesRapidFilterChanges(t *testing.T) {
	var requests int64
	var lastFrom atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		lastFrom.Store(r.URL.Query().Get("from"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	sink := &resultSink{}
	session := NewSession(NewClient(server.URL, "", 0, 100), 80*time.Millisecond, sink.onResult, sink.onError)
	defer session.Close()

	// Five rapid mutations must settle into exactly one request carrying
	// the final filter state.
	for _, from := range []string{"a", "al", "ali", "alic", "alice"} {
		session.SetCallFilter(CallFilter{From: from})
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, func() bool {
		n, _ := sink.counts()
		return n >= 1
	})
	time.Sleep(150 * time.Millisecond) // no trailing extra request

	assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
	assert.Equal(t, "alice", lastFrom.Load())
}

func TestSessionErrorNotifiesOnceAndSuppressesRefetch(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	sink := &resultSink{}
	session := NewSession(NewClient(server.URL, "", 0, 100), 20*time.Millisecond, sink.onResult, sink.onError)
	defer session.Close()

	session.SetCallFilter(CallFilter{})
	waitFor(t, func() bool {
		_, n := sink.counts()
		return n == 1
	})

	// Further filter changes while the error is active must not fetch.
	session.SetCallFilter(CallFilter{From: "a"})
	session.SetEventFilter(EventFilter{})
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
	_, errs := sink.counts()
	assert.Equal(t, 1, errs)
}

func TestSessionErrorCancelsQueuedDebounce(t *testing.T) {
	release := make(chan struct{})
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&requests, 1) == 1 {
			<-release
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	sink := &resultSink{}
	session := NewSession(NewClient(server.URL, "", 0, 100), 100*time.Millisecond, sink.onResult, sink.onError)
	defer session.Close()

	session.SetCallFilter(CallFilter{})
	waitFor(t, func() bool { return atomic.LoadInt64(&requests) == 1 })

	// Arm a second debounce while the first request is still in flight, then
	// let that request fail before the timer fires.
	session.SetCallFilter(CallFilter{From: "a"})
	close(release)
	waitFor(t, func() bool {
		_, n := sink.counts()
		return n == 1
	})
	time.Sleep(250 * time.Millisecond)

	// The queued timer must not fetch while the error is active.
	assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
}

func TestSessionRetryClearsErrorState(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"events":[{"id":1,"event_datetime":"2026-03-10T09:00:00Z"}]}`))
	}))
	defer server.Close()

	sink := &resultSink{}
	session := NewSession(NewClient(server.URL, "", 0, 100), 20*time.Millisecond, sink.onResult, sink.onError)
	defer session.Close()

	session.SetEventFilter(EventFilter{})
	waitFor(t, func() bool {
		_, n := sink.counts()
		return n == 1
	})

	fail.Store(false)
	session.Retry()
	waitFor(t, func() bool {
		n, _ := sink.counts()
		return n == 1
	})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.results, 1)
	assert.Equal(t, LogTypeEvents, sink.results[0].Type)
	require.Len(t, sink.results[0].Events, 1)
	assert.Equal(t, int64(1), sink.results[0].Events[0].ID)
}

func TestSessionStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			<-release // hold the first request until a newer one resolves
			w.Write([]byte(`{"calls":[{"call_id":"stale","start_at":"2026-03-10T09:00:00Z"}]}`))
			return
		}
		w.Write([]byte(`{"events":[{"id":2,"event_datetime":"2026-03-10T09:00:00Z"}]}`))
	}))
	defer server.Close()

	sink := &resultSink{}
	session := NewSession(NewClient(server.URL, "", 0, 100), 10*time.Millisecond, sink.onResult, sink.onError)
	defer session.Close()

	session.SetCallFilter(CallFilter{})
	waitFor(t, func() bool { return atomic.LoadInt64(&calls) == 1 })

	// Switch log type while the first request is still in flight.
	session.SetEventFilter(EventFilter{})
	waitFor(t, func() bool {
		n, _ := sink.counts()
		return n == 1
	})
	close(release)
	time.Sleep(100 * time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	// The stale calls response never surfaced; only the events result did.
	require.Len(t, sink.results, 1)
	assert.Equal(t, LogTypeEvents, sink.results[0].Type)
}

func TestSessionCloseStopsPendingFetch(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	sink := &resultSink{}
	session := NewSession(NewClient(server.URL, "", 0, 100), 50*time.Millisecond, sink.onResult, sink.onError)

	session.SetCallFilter(CallFilter{})
	session.Close()
	time.Sleep(120 * time.Millisecond)

	assert.Zero(t, atomic.LoadInt64(&requests))
}
