// Package hub fans inquiry updates out to connected WebSocket observers.
//
// Delivery is best effort: there is no backlog or replay for late joiners,
// and an observer that cannot keep up is dropped rather than allowed to
// block delivery to everyone else. A single observer always sees the
// events for one inquiry in the order they were published.
package hub

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type Hub struct {
	log *zap.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}

	clients map[*client]struct{}

	upgrader websocket.Upgrader
}

func New(log *zap.Logger, allowedOrigins []string) *Hub {
	allowAll := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
	}

	return &Hub{
		log:        log,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, o := range allowedOrigins {
					if o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// Run owns the client set. All register/unregister/deliver traffic passes
// through this single loop, which is what keeps per-observer delivery
// ordered without locks.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Info("observer connected", zap.Int("observers", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Info("observer disconnected", zap.Int("observers", len(h.clients)))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow observer: drop it, never stall the rest.
					delete(h.clients, c)
					close(c.send)
					h.log.Warn("observer dropped, send buffer full")
				}
			}
		}
	}
}

// BroadcastJSON publishes one event to every connected observer.
// It never blocks the caller: if the hub itself is saturated the event is
// dropped and counted against no one.
func (h *Hub) BroadcastJSON(eventName string, payload any) {
	b, err := json.Marshal(event{Event: eventName, Data: payload})
	if err != nil {
		h.log.Error("broadcast marshal failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- b:
	default:
		h.log.Warn("broadcast dropped, hub saturated", zap.String("event", eventName))
	}
}

// ServeWS upgrades an HTTP request into an observer connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, 64)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
