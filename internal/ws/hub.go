package ws

import "sync"

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub fans event log updates out to live-tail subscribers, keyed by tenant
// slug so one tenant's events never reach another tenant's console.
type Hub struct {
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
	done      chan struct{}
	once      sync.Once
}

type message struct {
	tenant  string
	payload []byte
}

type subscription struct {
	tenant string
	client Subscriber
}

// NewHub creates a running hub.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.clients[sub.tenant]; !ok {
				h.clients[sub.tenant] = make(map[Subscriber]struct{})
			}
			h.clients[sub.tenant][sub.client] = struct{}{}
		case sub := <-h.unreg:
			if clients, ok := h.clients[sub.tenant]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.clients, sub.tenant)
				}
			}
		case msg := <-h.broadcast:
			if clients, ok := h.clients[msg.tenant]; ok {
				for c := range clients {
					if err := c.Send(msg.payload); err != nil {
						c.Close()
						delete(clients, c)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, msg.tenant)
				}
			}
		case <-h.done:
			for tenant, clients := range h.clients {
				for c := range clients {
					c.Close()
				}
				delete(h.clients, tenant)
			}
			return
		}
	}
}

// Register adds a client to a tenant stream.
func (h *Hub) Register(tenant string, client Subscriber) {
	select {
	case h.register <- subscription{tenant: tenant, client: client}:
	case <-h.done:
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(tenant string, client Subscriber) {
	select {
	case h.unreg <- subscription{tenant: tenant, client: client}:
	case <-h.done:
	}
}

// Broadcast sends a payload to all of a tenant's clients.
func (h *Hub) Broadcast(tenant string, payload []byte) {
	select {
	case h.broadcast <- message{tenant: tenant, payload: payload}:
	case <-h.done:
	}
}

// Shutdown closes every client and stops the hub loop.
func (h *Hub) Shutdown() {
	h.once.Do(func() { close(h.done) })
}
