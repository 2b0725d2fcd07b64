package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is checked by middleware.WebSocketCORSCheck
	},
}

// Client is one WebSocket connection watching a match. Only clients that
// presented a valid player token may steer the paddle.
type Client struct {
	conn       *websocket.Conn
	hub        *Hub
	matchID    string
	controller bool
	send       chan []byte
}

// Hub tracks connected clients per match and fans out messages.
type Hub struct {
	rooms      map[string]map[*Client]struct{} // matchID -> clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a Hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for matchID, room := range h.rooms {
				for c := range room {
					c.conn.Close()
				}
				delete(h.rooms, matchID)
			}
			h.mu.Unlock()
			log.Println("[WS] Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.matchID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.matchID] = room
			}
			room[client] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			log.Printf("[WS] Client joined match %s (controller=%v room_size=%d)", client.matchID, client.controller, size)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.matchID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.matchID)
					}
					log.Printf("[WS] Client left match %s", client.matchID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToMatch sends a message to every client in a match room.
func (h *Hub) BroadcastToMatch(matchID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message for match %s: %v", matchID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[matchID] {
		select {
		case client.send <- data:
		default:
			// Snapshots are superseded every tick; a slow reader just misses some.
		}
	}
}

// RoomSize returns the number of clients watching a match.
func (h *Hub) RoomSize(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}

// Message is the envelope for client-to-server messages.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for match %s: %v", c.matchID, err)
				return
			}

		case <-c.hub.done:
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for match %s: %v", c.matchID, err)
				return
			}
		}
	}
}

// join registers the client unless the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters the client unless the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// sendJSON queues a message for this client only.
func (c *Client) sendJSON(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] dropped direct message for match %s (buffer full)", c.matchID)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
