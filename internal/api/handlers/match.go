package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/auth"
	"github.com/playmatatu/pong/internal/game"
	"github.com/playmatatu/pong/internal/session"
)

// CreateMatch starts a new idle match and issues the token that controls it.
func CreateMatch(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := matches.Config()

		s, err := matches.CreateMatch()
		if err != nil {
			if errors.Is(err, session.ErrTooManyMatches) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Too many active matches, try again later"})
				return
			}
			log.Printf("[MATCH] Failed to create match: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create match"})
			return
		}

		ttl := time.Duration(cfg.PlayerTokenTTLMinutes) * time.Minute
		token, expiresAt, err := auth.IssuePlayerToken(cfg.JWTSecret, s.ID, ttl)
		if err != nil {
			log.Printf("[AUTH] Failed to issue token for match %s: %v", s.ID, err)
			matches.Remove(s.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create match"})
			return
		}

		c.Header("X-Match-ID", s.ID)
		c.JSON(http.StatusCreated, gin.H{
			"match_id":     s.ID,
			"player_token": token,
			"expires_at":   expiresAt,
			"ws_url":       "/api/v1/matches/" + s.ID + "/ws?pt=" + token,
			"snapshot":     s.Snapshot(),
		})
	}
}

// ListMatches returns the ids of matches held by this server.
func ListMatches(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids := matches.List()
		c.Header("X-Active-Matches", strconv.Itoa(len(ids)))
		c.JSON(http.StatusOK, gin.H{
			"matches": ids,
			"count":   len(ids),
		})
	}
}

// GetMatch returns the latest snapshot of a match. Matches that already
// stopped are served from the Redis cache while it lasts.
func GetMatch(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := matches.Snapshot(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"match_id": c.Param("id"),
			"snapshot": snap,
		})
	}
}

// StartMatch queues a start command. The command is applied at the next
// tick; the phase check here only gives early feedback.
func StartMatch(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := matches.Get(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}
		if phase := s.Snapshot().Match.Phase; phase != game.PhaseIdle {
			c.JSON(http.StatusConflict, gin.H{"error": "Match already started", "phase": phase})
			return
		}
		s.Start()
		c.JSON(http.StatusAccepted, gin.H{"match_id": s.ID, "command": game.CommandStart})
	}
}

// RestartMatch queues a restart command. Only an ended match can be
// restarted.
func RestartMatch(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := matches.Get(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}
		if phase := s.Snapshot().Match.Phase; phase != game.PhaseEnded {
			c.JSON(http.StatusConflict, gin.H{"error": "Match has not ended", "phase": phase})
			return
		}
		s.Restart()
		c.JSON(http.StatusAccepted, gin.H{"match_id": s.ID, "command": game.CommandRestart})
	}
}

// MatchHistory returns recently finished matches, newest first.
func MatchHistory(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
				return
			}
			limit = n
		}

		history := matches.History()
		results, err := history.RecentResults(c.Request.Context(), limit)
		if err != nil {
			log.Printf("[DB] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load match history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"results":   results,
			"count":     len(results),
			"persisted": history.Enabled(),
		})
	}
}

// EndMatch stops a match on behalf of its player. A match in play is
// recorded as abandoned.
func EndMatch(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := matches.Abandon(c.Param("id")); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
