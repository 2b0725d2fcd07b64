package models

import (
	"database/sql"
	"time"
)

// MatchResult is a finished match as stored in match_results
type MatchResult struct {
	ID          int            `db:"id" json:"id"`
	MatchID     string         `db:"match_id" json:"match_id"`
	PlayerScore int            `db:"player_score" json:"player_score"`
	AIScore     int            `db:"ai_score" json:"ai_score"`
	Winner      string         `db:"winner" json:"winner"`
	Ticks       int64          `db:"ticks" json:"ticks"`
	Outcome     string         `db:"outcome" json:"outcome"`
	StartedAt   sql.NullTime   `db:"started_at" json:"started_at,omitempty"`
	EndedAt     time.Time      `db:"ended_at" json:"ended_at"`
	Notes       sql.NullString `db:"notes" json:"notes,omitempty"`
}

// Outcome values for MatchResult
const (
	OutcomeCompleted = "COMPLETED"
	OutcomeAbandoned = "ABANDONED"
)
