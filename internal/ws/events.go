package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/pong/internal/session"
)

// StartEventSubscriber relays match events published on Redis to the
// connected clients of each match. It returns immediately if store has no
// Redis client.
func StartEventSubscriber(ctx context.Context, store *session.Store, hub *Hub) {
	if !store.Enabled() {
		log.Println("[WS] Redis client not set; match event subscriber not started")
		return
	}

	pubsub := store.Subscribe(ctx)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", session.EventsChannel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopped", session.EventsChannel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev session.MatchEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("[WS] invalid event payload: %v", err)
					continue
				}
				if ev.MatchID == "" {
					continue
				}

				log.Printf("[WS] event received: type=%s match_id=%s room_size=%d", ev.Type, ev.MatchID, hub.RoomSize(ev.MatchID))
				hub.BroadcastToMatch(ev.MatchID, ev)
			}
		}
	}()
}
