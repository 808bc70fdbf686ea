package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSubscriber struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
	closed   bool
}

func (f *fakeSubscriber) Send(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send failed")
	}
	f.payloads = append(f.payloads, p)
	return nil
}

func (f *fakeSubscriber) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSubscriber) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func TestHubBroadcastIsTenantScoped(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	acme := &fakeSubscriber{}
	other := &fakeSubscriber{}
	hub.Register("acme", acme)
	hub.Register("other", other)

	hub.Broadcast("acme", []byte(`{"id":1}`))

	deadline := time.Now().Add(time.Second)
	for acme.received() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 1, acme.received())
	assert.Zero(t, other.received())
}

func TestHubDropsFailingSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	bad := &fakeSubscriber{fail: true}
	hub.Register("acme", bad)
	hub.Broadcast("acme", []byte(`x`))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		bad.mu.Lock()
		closed := bad.closed
		bad.mu.Unlock()
		if closed {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("failing subscriber was not closed")
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	sub := &fakeSubscriber{}
	hub.Register("acme", sub)
	hub.Unregister("acme", sub)
	hub.Broadcast("acme", []byte(`x`))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, sub.received())
}
