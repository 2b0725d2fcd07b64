package session

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pong/internal/models"
)

const resultColumns = "match_id, player_score, ai_score, winner, ticks, outcome, started_at, ended_at, notes"

// History records finished matches in Postgres. A History with a nil DB
// drops writes and returns no rows.
type History struct {
	db *sqlx.DB
}

// NewHistory wraps db, which may be nil.
func NewHistory(db *sqlx.DB) *History {
	return &History{db: db}
}

// RecordResult inserts r and returns its row id.
func (h *History) RecordResult(ctx context.Context, r models.MatchResult) (int, error) {
	if h == nil || h.db == nil {
		return 0, nil
	}

	var id int
	err := h.db.QueryRowxContext(ctx,
		`INSERT INTO match_results (`+resultColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		r.MatchID, r.PlayerScore, r.AIScore, r.Winner, r.Ticks, r.Outcome, r.StartedAt, r.EndedAt, r.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert match result %s: %w", r.MatchID, err)
	}
	return id, nil
}

// RecentResults returns up to limit results, newest first.
func (h *History) RecentResults(ctx context.Context, limit int) ([]models.MatchResult, error) {
	results := []models.MatchResult{}
	if h == nil || h.db == nil {
		return results, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	err := h.db.SelectContext(ctx, &results,
		`SELECT id, `+resultColumns+`
		 FROM match_results ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select match results: %w", err)
	}
	return results, nil
}

// Enabled reports whether results are persisted.
func (h *History) Enabled() bool {
	return h != nil && h.db != nil
}
