package session

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playmatatu/pong/internal/game"
	"github.com/playmatatu/pong/internal/models"
)

// ErrInvalidTarget rejects paddle targets that are NaN or infinite.
var ErrInvalidTarget = errors.New("paddle target must be a finite number")

// Broadcaster fans a message out to every client watching a match.
type Broadcaster interface {
	BroadcastToMatch(matchID string, message interface{})
}

// Session is one live match: a simulation, its scheduler and the goroutine
// ticking it. It renders each tick to the broadcaster and persists
// snapshots and results.
type Session struct {
	ID        string
	CreatedAt time.Time

	scheduler     *game.Scheduler
	store         *Store
	history       *History
	broadcaster   Broadcaster
	snapshotEvery uint64

	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	startedAt *time.Time
	finished  bool

	lastActive  atomic.Int64 // unix seconds
	lastTouched atomic.Int64 // unix seconds of the last Redis write
}

// Render implements game.Renderer.
func (s *Session) Render(snap game.Snapshot) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToMatch(s.ID, map[string]interface{}{
		"type":  "snapshot",
		"state": snap,
	})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	log.Printf("[MATCH] %s loop started (interval=%s)", s.ID, s.scheduler.Interval())
	if err := s.scheduler.Run(ctx, s.onStep); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[MATCH] %s loop stopped: %v", s.ID, err)
		return
	}
	log.Printf("[MATCH] %s loop stopped", s.ID)
}

func (s *Session) onStep(res game.StepResult) {
	for _, c := range res.Commands {
		if c.Err != nil {
			log.Printf("[MATCH] %s: %s rejected in phase %s: %v", s.ID, c.Command, res.Phase, c.Err)
			if s.broadcaster != nil {
				s.broadcaster.BroadcastToMatch(s.ID, map[string]interface{}{
					"type":    "error",
					"message": string(c.Command) + " is not allowed while the match is " + string(res.Phase),
				})
			}
		}
	}

	if res.PhaseChanged {
		log.Printf("[MATCH] %s phase -> %s at tick %d", s.ID, res.Phase, res.Tick)
		if res.Phase == game.PhaseRunning {
			now := time.Now()
			s.mu.Lock()
			s.startedAt = &now
			s.finished = false
			s.mu.Unlock()
		}
	}

	periodic := s.snapshotEvery > 0 && res.Phase == game.PhaseRunning && res.Tick%s.snapshotEvery == 0
	if res.PhaseChanged || periodic {
		s.saveSnapshot()
	}

	if res.PhaseChanged && res.Phase == game.PhaseEnded {
		s.finish(models.OutcomeCompleted)
	}
}

func (s *Session) saveSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.store.SaveSnapshot(ctx, s.ID, s.scheduler.Latest()); err != nil {
		log.Printf("[REDIS] Failed to save snapshot for match %s: %v", s.ID, err)
	}
}

// finish records the current score as a result and announces it. It runs at
// most once per started match.
func (s *Session) finish(outcome string) {
	s.mu.Lock()
	if s.finished || s.startedAt == nil {
		s.mu.Unlock()
		return
	}
	s.finished = true
	started := *s.startedAt
	s.mu.Unlock()

	snap := s.scheduler.Latest()
	winner := string(snap.Match.Winner())
	result := models.MatchResult{
		MatchID:     s.ID,
		PlayerScore: snap.Match.PlayerScore,
		AIScore:     snap.Match.AIScore,
		Winner:      winner,
		Ticks:       int64(snap.Tick),
		Outcome:     outcome,
		StartedAt:   sql.NullTime{Time: started, Valid: true},
		EndedAt:     time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if id, err := s.history.RecordResult(ctx, result); err != nil {
		log.Printf("[DB] %v", err)
	} else if id > 0 {
		log.Printf("[DB] Recorded %s result %d for match %s (%d:%d)", outcome, id, s.ID, result.PlayerScore, result.AIScore)
	}

	ev := MatchEvent{
		Type:        "match_over",
		MatchID:     s.ID,
		PlayerScore: result.PlayerScore,
		AIScore:     result.AIScore,
		Winner:      winner,
		Message:     "Match over",
	}
	if outcome == models.OutcomeAbandoned {
		ev.Type = "match_abandoned"
		ev.Message = "Match abandoned due to inactivity"
	}
	if !s.store.Enabled() {
		// No subscriber will relay it, so deliver locally.
		if s.broadcaster != nil {
			s.broadcaster.BroadcastToMatch(s.ID, ev)
		}
		return
	}
	if n, err := s.store.Publish(ctx, ev); err != nil {
		log.Printf("[REDIS] publish %s failed for match %s: %v", ev.Type, s.ID, err)
	} else {
		log.Printf("[MATCH] %s published %s (subscribers=%d)", s.ID, ev.Type, n)
	}
}

// MovePaddle queues a new top edge for the player paddle.
func (s *Session) MovePaddle(y float64) error {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return ErrInvalidTarget
	}
	s.scheduler.SetPlayerTarget(y)
	s.touch()
	return nil
}

// Start queues a start command.
func (s *Session) Start() {
	s.scheduler.Submit(game.CommandStart)
	s.touch()
}

// Restart queues a restart command.
func (s *Session) Restart() {
	s.scheduler.Submit(game.CommandRestart)
	s.touch()
}

// Snapshot returns the most recently rendered state.
func (s *Session) Snapshot() game.Snapshot {
	return s.scheduler.Latest()
}

// LastActive is the time of the most recent player input.
func (s *Session) LastActive() time.Time {
	return time.Unix(s.lastActive.Load(), 0)
}

// touch marks activity. Redis is written at most once a second per match.
func (s *Session) touch() {
	now := time.Now()
	s.lastActive.Store(now.Unix())
	if now.Unix()-s.lastTouched.Load() < 1 {
		return
	}
	s.lastTouched.Store(now.Unix())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.store.Touch(ctx, s.ID, now); err != nil {
		log.Printf("[REDIS] Failed to touch match %s: %v", s.ID, err)
	}
}

// stop cancels the loop and waits for it to exit.
func (s *Session) stop() {
	s.cancel()
	<-s.done
}
