package session

import (
	"context"
	"log"
	"time"
)

// StartReaper stops matches that have seen no player input for
// MatchIdleSeconds. Activity comes from the Redis sorted set when Redis is
// configured, otherwise from the in-memory sessions.
func (m *Manager) StartReaper(ctx context.Context) {
	idle := time.Duration(m.config.MatchIdleSeconds) * time.Second
	poll := time.Duration(m.config.ReaperPollSeconds) * time.Second
	if idle <= 0 || poll <= 0 {
		log.Println("[REAPER] Idle timeout disabled; reaper not started")
		return
	}

	log.Printf("[REAPER] Reaper started (idle=%s poll=%s)", idle, poll)
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[REAPER] Reaper stopping")
				return
			case <-ticker.C:
				m.reapOnce(ctx, time.Now().Add(-idle))
			}
		}
	}()
}

// reapOnce abandons every local match idle since before cutoff and returns
// how many it stopped.
func (m *Manager) reapOnce(ctx context.Context, cutoff time.Time) int {
	reaped := 0
	for _, id := range m.staleMatches(ctx, cutoff) {
		s, err := m.Get(id)
		if err != nil {
			// Already gone; drop the leftover activity entry.
			if ferr := m.store.Forget(ctx, id); ferr != nil {
				log.Printf("[REAPER] Failed to forget %s: %v", id, ferr)
			}
			continue
		}
		// Redis may lag behind the throttled in-memory timestamp.
		if s.LastActive().After(cutoff) {
			continue
		}
		log.Printf("[REAPER] Abandoning match %s (last active %s)", id, s.LastActive().Format(time.RFC3339))
		if err := m.Abandon(id); err != nil {
			log.Printf("[REAPER] Abandon %s failed: %v", id, err)
			continue
		}
		reaped++
	}
	return reaped
}

func (m *Manager) staleMatches(ctx context.Context, cutoff time.Time) []string {
	if m.store.rdb != nil {
		ids, err := m.store.Stale(ctx, cutoff)
		if err != nil {
			log.Printf("[REAPER] Failed to fetch stale matches: %v", err)
			return nil
		}
		return ids
	}

	var ids []string
	for _, id := range m.List() {
		if s, err := m.Get(id); err == nil && !s.LastActive().After(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}
