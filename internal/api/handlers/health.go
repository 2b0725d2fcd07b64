package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pong/internal/session"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status. Optional backends report
// "disabled" when they are not configured.
func HealthCheck(db *sqlx.DB, rdb *redis.Client, matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		dbStatus := "disabled"
		if db != nil {
			dbStatus = "ok"
			if err := db.PingContext(ctx); err != nil {
				dbStatus = "error"
				status = "degraded"
			}
		}
		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus = "error"
				status = "degraded"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":         status,
			"service":        "pong-api",
			"version":        version,
			"uptime":         time.Since(startTime).String(),
			"database":       dbStatus,
			"redis":          redisStatus,
			"active_matches": len(matches.List()),
		})
	}
}
