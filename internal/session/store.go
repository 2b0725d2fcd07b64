package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/playmatatu/pong/internal/game"
	"github.com/redis/go-redis/v9"
)

const (
	// EventsChannel carries MatchEvent payloads for the transport layer.
	EventsChannel = "match_events"
	activityKey   = "match_activity"
	snapshotTTL   = time.Hour
)

// ErrSnapshotNotFound is returned when Redis holds no snapshot for a match.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// MatchEvent is published on EventsChannel.
type MatchEvent struct {
	Type        string `json:"type"` // "match_over", "match_abandoned"
	MatchID     string `json:"match_id"`
	PlayerScore int    `json:"player_score"`
	AIScore     int    `json:"ai_score"`
	Winner      string `json:"winner,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Store keeps match snapshots, activity timestamps and events in Redis.
// A Store with a nil client does nothing.
type Store struct {
	rdb *redis.Client
}

// NewStore wraps rdb, which may be nil.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func snapshotKey(matchID string) string {
	return "match:" + matchID + ":state"
}

// SaveSnapshot stores snap under match:<id>:state for an hour.
func (s *Store) SaveSnapshot(ctx context.Context, matchID string, snap game.Snapshot) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.rdb.SetEx(ctx, snapshotKey(matchID), data, snapshotTTL).Err()
}

// LoadSnapshot reads the last stored snapshot of a match.
func (s *Store) LoadSnapshot(ctx context.Context, matchID string) (game.Snapshot, error) {
	var snap game.Snapshot
	if s == nil || s.rdb == nil {
		return snap, ErrSnapshotNotFound
	}
	data, err := s.rdb.Get(ctx, snapshotKey(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return snap, ErrSnapshotNotFound
	}
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Touch records activity on a match at the given time.
func (s *Store) Touch(ctx context.Context, matchID string, at time.Time) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.ZAdd(ctx, activityKey, redis.Z{Score: float64(at.Unix()), Member: matchID}).Err()
}

// Stale lists matches with no activity since before.
func (s *Store) Stale(ctx context.Context, before time.Time) ([]string, error) {
	if s == nil || s.rdb == nil {
		return nil, nil
	}
	return s.rdb.ZRangeByScore(ctx, activityKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(before.Unix(), 10),
	}).Result()
}

// Forget drops the activity entry of a match. The snapshot is kept until it
// expires so late readers can still fetch the final state.
func (s *Store) Forget(ctx context.Context, matchID string) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.ZRem(ctx, activityKey, matchID).Err()
}

// Publish sends ev on EventsChannel and returns the subscriber count.
func (s *Store) Publish(ctx context.Context, ev MatchEvent) (int64, error) {
	if s == nil || s.rdb == nil {
		return 0, nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return 0, fmt.Errorf("marshal event: %w", err)
	}
	return s.rdb.Publish(ctx, EventsChannel, data).Result()
}

// Subscribe opens a subscription to EventsChannel. It returns nil when no
// Redis client is configured.
func (s *Store) Subscribe(ctx context.Context) *redis.PubSub {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Subscribe(ctx, EventsChannel)
}

// Enabled reports whether the store is backed by Redis.
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}
