package logquery

import (
	"context"
	"sync"
	"time"

	"github.com/voxkit/voxconsole/pkg/metrics"
)

// Result is one resolved query, tagged with the log type it answers.
type Result struct {
	Type   LogType
	Calls  []CallLogRecord
	Events []EventLogRecord
}

// Session serializes a stream of filter changes into backend queries.
//
// Filter changes are debounced: rapid successive mutations settle into a
// single request reflecting the final filter state. Every fired request gets a
// generation token; a response is dropped unless its token is still current,
// so a stale in-flight response for an abandoned filter or log type never
// overwrites newer data. After a failure, automatic re-fetching is suspended
// until Retry is called; the error callback fires once per error episode.
type Session struct {
	client *Client
	wait   time.Duration

	onResult func(Result)
	onError  func(error)

	mu          sync.Mutex
	timer       *time.Timer
	gen         uint64
	closed      bool
	errActive   bool
	logType     LogType
	callFilter  CallFilter
	eventFilter EventFilter
}

// NewSession builds a session. onResult receives every fresh, non-stale
// result; onError fires once when a fetch episode starts failing.
func NewSession(client *Client, wait time.Duration, onResult func(Result), onError func(error)) *Session {
	if wait <= 0 {
		wait = 500 * time.Millisecond
	}
	return &Session{
		client:   client,
		wait:     wait,
		onResult: onResult,
		onError:  onError,
		logType:  LogTypeCalls,
	}
}

// SetCallFilter switches the session to call logs and schedules a debounced fetch.
func (s *Session) SetCallFilter(filter CallFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logType = LogTypeCalls
	s.callFilter = filter
	s.scheduleLocked()
}

// SetEventFilter switches the session to event logs and schedules a debounced fetch.
func (s *Session) SetEventFilter(filter EventFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logType = LogTypeEvents
	s.eventFilter = filter
	s.scheduleLocked()
}

// Retry clears the error state and re-issues the last filter immediately.
func (s *Session) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errActive = false
	s.fireLocked()
}

// Close stops any pending debounce timer and invalidates in-flight requests.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++ // orphan anything still in flight
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// scheduleLocked arms the debounce timer. While the error state is active no
// automatic fetch fires; the pending filter is kept for Retry.
func (s *Session) scheduleLocked() {
	if s.closed || s.errActive {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.wait, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.fireLocked()
	})
}

func (s *Session) fireLocked() {
	// A timer armed before a fetch failed must not auto-retry once the error
	// lands; Retry clears errActive before calling in here.
	if s.closed || s.errActive {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	gen := s.gen
	logType := s.logType
	callFilter := s.callFilter
	eventFilter := s.eventFilter

	go s.fetch(gen, logType, callFilter, eventFilter)
}

func (s *Session) fetch(gen uint64, logType LogType, callFilter CallFilter, eventFilter EventFilter) {
	var result Result
	var err error

	ctx := context.Background()
	switch logType {
	case LogTypeEvents:
		var events []EventLogRecord
		events, err = s.client.QueryEvents(ctx, eventFilter)
		result = Result{Type: LogTypeEvents, Events: events}
	default:
		var calls []CallLogRecord
		calls, err = s.client.QueryCalls(ctx, callFilter)
		result = Result{Type: LogTypeCalls, Calls: calls}
	}

	s.mu.Lock()
	if s.closed || gen != s.gen {
		// A newer request superseded this one; discard quietly.
		s.mu.Unlock()
		return
	}
	if err != nil {
		metrics.IncLogQueryErrors()
		notify := !s.errActive
		s.errActive = true
		s.mu.Unlock()
		if notify && s.onError != nil {
			s.onError(err)
		}
		return
	}
	s.errActive = false
	s.mu.Unlock()

	if s.onResult != nil {
		s.onResult(result)
	}
}
