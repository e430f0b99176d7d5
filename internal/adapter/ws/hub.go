// Package ws pushes engine events to connected operations dashboards.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// sendBuffer bounds the per-client queue. A client that falls this far
// behind starts losing events rather than stalling the broadcaster.
const sendBuffer = 16

// client is one dashboard connection with its own outbound queue.
type client struct {
	send   chan []byte
	cancel context.CancelFunc
}

// Hub fans engine events out to every connected dashboard. Each client
// gets a writer goroutine, so one slow connection never delays the rest.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// HandleWS upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	// The connection is hijacked and outlives the handler, so it cannot
	// run on r.Context(): net/http cancels that as soon as we return.
	ctx, cancel := context.WithCancel(context.Background())
	c := &client{send: make(chan []byte, sendBuffer), cancel: cancel}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("dashboard connected", "remote", r.RemoteAddr)

	// Writer: drains this client's queue until the connection dies.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case data := <-c.send:
				if err := sock.Write(ctx, websocket.MessageText, data); err != nil {
					h.drop(c)
					return
				}
			}
		}
	}()

	// Reader: inbound frames are discarded, the loop exists to notice
	// disconnects and keep the connection's control frames serviced.
	go func() {
		defer func() {
			h.drop(c)
			_ = sock.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			if _, _, err := sock.Read(ctx); err != nil {
				return
			}
		}
	}()
}

// BroadcastEvent wraps payload in an Envelope and queues it for every
// connected client. Clients with a full queue miss this event.
func (h *Hub) BroadcastEvent(_ context.Context, event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("event payload marshal failed", "event", event, "error", err)
		return
	}
	data, err := json.Marshal(Envelope{
		Event:     event,
		EmittedAt: time.Now().UTC(),
		Payload:   body,
	})
	if err != nil {
		slog.Error("event envelope marshal failed", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slog.Debug("dashboard queue full, event dropped", "event", event)
		}
	}
}

// ConnectionCount reports the number of connected dashboards.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		c.cancel()
		delete(h.clients, c)
		slog.Info("dashboard disconnected")
	}
}
