package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pong/internal/api/handlers"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/middleware"
	"github.com/playmatatu/pong/internal/session"
	"github.com/playmatatu/pong/internal/ws"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config, matches *session.Manager, hub *ws.Hub) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	requireToken := middleware.RequirePlayerToken(cfg.JWTSecret)
	wsHandler := ws.NewHandler(hub, matches, cfg.JWTSecret)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(db, rdb, matches))

		m := v1.Group("/matches")
		{
			m.POST("", handlers.CreateMatch(matches))
			m.GET("", handlers.ListMatches(matches))
			m.GET("/history", handlers.MatchHistory(matches))
			m.GET("/:id", handlers.GetMatch(matches))
			m.POST("/:id/start", requireToken, handlers.StartMatch(matches))
			m.POST("/:id/restart", requireToken, handlers.RestartMatch(matches))
			m.DELETE("/:id", requireToken, handlers.EndMatch(matches))
			m.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), wsHandler.HandleWebSocket)
		}
	}
}
