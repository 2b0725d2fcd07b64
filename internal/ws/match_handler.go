package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/pong/internal/auth"
	"github.com/playmatatu/pong/internal/game"
	"github.com/playmatatu/pong/internal/session"
)

// PaddleData moves the player paddle. Top is the paddle's top edge; Pointer
// is a pointer position that the paddle centres on. Pointer wins if both
// are set.
type PaddleData struct {
	Top     *float64 `json:"y"`
	Pointer *float64 `json:"pointer_y"`
}

// Handler upgrades match connections and routes their messages.
type Handler struct {
	hub     *Hub
	matches *session.Manager
	secret  string
}

// NewHandler creates a match WebSocket handler.
func NewHandler(hub *Hub, matches *session.Manager, secret string) *Handler {
	return &Handler{hub: hub, matches: matches, secret: secret}
}

// HandleWebSocket handles GET /matches/:id/ws?pt=<player token>.
// Without a token the connection is a read-only spectator.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	matchID := c.Param("id")
	s, err := h.matches.Get(matchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
		return
	}

	controller := false
	if pt := c.Query("pt"); pt != "" {
		if err := auth.Authorize(h.secret, pt, matchID); err != nil {
			log.Printf("[WS] Rejected token for match %s: %v", matchID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid player token"})
			return
		}
		controller = true
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:       conn,
		hub:        h.hub,
		matchID:    matchID,
		controller: controller,
		send:       make(chan []byte, 256),
	}

	if !h.hub.join(client) {
		conn.Close()
		return
	}

	// New viewers get the current frame without waiting for the next tick.
	client.sendJSON(map[string]interface{}{
		"type":  "snapshot",
		"state": s.Snapshot(),
	})

	go client.writePump()
	go client.readPump(s)
}

func (c *Client) readPump(s *session.Session) {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error for match %s: %v", c.matchID, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("Invalid message format")
			continue
		}

		c.handleMessage(s, msg)
	}
}

func (c *Client) handleMessage(s *session.Session, msg Message) {
	switch msg.Type {
	case "get_state":
		c.sendJSON(map[string]interface{}{
			"type":  "snapshot",
			"state": s.Snapshot(),
		})
		return
	case "paddle", "start", "restart":
	default:
		c.sendError("Unknown message type")
		return
	}

	if !c.controller {
		c.sendError("Spectators cannot control the match")
		return
	}

	switch msg.Type {
	case "paddle":
		var data PaddleData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid paddle data")
			return
		}
		var y float64
		switch {
		case data.Pointer != nil:
			y = game.PaddleTopForPointer(*data.Pointer)
		case data.Top != nil:
			y = *data.Top
		default:
			c.sendError("Invalid paddle data")
			return
		}
		if err := s.MovePaddle(y); err != nil {
			if errors.Is(err, session.ErrInvalidTarget) {
				c.sendError(err.Error())
			}
			return
		}

	case "start":
		s.Start()

	case "restart":
		s.Restart()
	}
}
