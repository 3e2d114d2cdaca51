// Package notify pushes best-effort record-change events to connected
// clients over websocket. It is strictly a latency optimization layered
// on top of the on-demand fetch path: every failure mode here (closed
// socket, full buffer, no listeners) is silent and harmless.
package notify

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// ChangeEvent tells watchers that a record set changed and a reload is
// worthwhile.
type ChangeEvent struct {
	Type  string    `json:"type"`
	Table string    `json:"table"`
	At    time.Time `json:"at"`
}

// Hub maintains the set of active clients and broadcasts change events
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	debouncer *Debouncer

	mu sync.RWMutex
}

// NewHub creates a hub whose change events are debounced per table with
// the given quiet window.
func NewHub(debounceWindow time.Duration) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		debouncer:  NewDebouncer(debounceWindow),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("🔔 Watcher connected (%d active)", h.clientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("🔕 Watcher disconnected (%d active)", h.clientCount())

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop the event, the client still
					// has the on-demand path.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// RecordChanged reports that the given record set changed. The actual
// broadcast fires once the table has been quiet for the debounce window.
func (h *Hub) RecordChanged(table string) {
	h.debouncer.Trigger(table, func() {
		event := ChangeEvent{
			Type:  "RECORD_CHANGED",
			Table: table,
			At:    time.Now().UTC(),
		}
		msg, err := json.Marshal(event)
		if err != nil {
			log.Printf("Error marshaling change event: %v", err)
			return
		}
		select {
		case h.broadcast <- msg:
		default:
		}
	})
}

func (h *Hub) clientCount() int {
	return len(h.clients)
}
