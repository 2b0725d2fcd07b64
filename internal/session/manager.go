package session

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/game"
	"github.com/playmatatu/pong/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrTooManyMatches = errors.New("too many active matches")
)

// Manager owns every live match session.
type Manager struct {
	sessions    map[string]*Session
	store       *Store
	history     *History
	config      *config.Config
	broadcaster Broadcaster
	seed        func() int64
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
}

// NewManager creates a manager. db and rdb may be nil; persistence is then
// skipped.
func NewManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sessions: make(map[string]*Session),
		store:    NewStore(rdb),
		history:  NewHistory(db),
		config:   cfg,
		seed:     func() int64 { return time.Now().UnixNano() },
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetBroadcaster wires the transport that receives per-tick snapshots. Call
// it before creating matches.
func (m *Manager) SetBroadcaster(b Broadcaster) {
	m.mu.Lock()
	m.broadcaster = b
	m.mu.Unlock()
}

// SetSeedFunc overrides the serve randomness seed for new matches.
func (m *Manager) SetSeedFunc(seed func() int64) {
	m.mu.Lock()
	m.seed = seed
	m.mu.Unlock()
}

// Store exposes the Redis store for transport-side subscribers.
func (m *Manager) Store() *Store {
	return m.store
}

// History exposes finished-match records.
func (m *Manager) History() *History {
	return m.history
}

// Config returns the application config.
func (m *Manager) Config() *config.Config {
	return m.config
}

// CreateMatch starts a new idle match and its tick loop.
func (m *Manager) CreateMatch() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit := m.config.MaxActiveMatches; limit > 0 && len(m.sessions) >= limit {
		return nil, ErrTooManyMatches
	}

	id := uuid.NewString()
	sim := game.NewSimulation(m.config.Arena(), game.NewRandomSource(m.seed()))

	ctx, cancel := context.WithCancel(m.ctx)
	s := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		store:       m.store,
		history:     m.history,
		broadcaster: m.broadcaster,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	if every := m.config.SnapshotEveryTicks; every > 0 {
		s.snapshotEvery = uint64(every)
	}
	s.scheduler = game.NewScheduler(sim, s, m.config.TickRate)

	m.sessions[id] = s
	s.touch()
	s.saveSnapshot()
	go s.run(ctx)

	log.Printf("[MATCH] Created match %s (active=%d)", id, len(m.sessions))
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrMatchNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return s, nil
}

// Snapshot returns the live state of a match, falling back to the last
// snapshot stored in Redis for matches that are no longer running here.
func (m *Manager) Snapshot(ctx context.Context, id string) (game.Snapshot, error) {
	if s, err := m.Get(id); err == nil {
		return s.Snapshot(), nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return game.Snapshot{}, ErrMatchNotFound
	}
	snap, err := m.store.LoadSnapshot(ctx, id)
	if errors.Is(err, ErrSnapshotNotFound) {
		return snap, ErrMatchNotFound
	}
	return snap, err
}

// List returns the ids of live matches in lexical order.
func (m *Manager) List() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Remove stops a match and forgets it.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrMatchNotFound
	}

	s.stop()
	s.saveSnapshot()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.store.Forget(ctx, id); err != nil {
		log.Printf("[REDIS] Failed to forget match %s: %v", id, err)
	}
	log.Printf("[MATCH] Removed match %s", id)
	return nil
}

// Abandon stops an inactive match. A match still in play is recorded with
// its partial score.
func (m *Manager) Abandon(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	if err := m.Remove(id); err != nil {
		return err
	}
	if s.Snapshot().Match.Phase == game.PhaseRunning {
		s.finish(models.OutcomeAbandoned)
	}
	return nil
}

// Shutdown stops every match loop.
func (m *Manager) Shutdown() {
	for _, id := range m.List() {
		if err := m.Remove(id); err != nil && !errors.Is(err, ErrMatchNotFound) {
			log.Printf("[MATCH] shutdown %s: %v", id, err)
		}
	}
	m.cancel()
}
