package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/playmatatu/pong/internal/api"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/database"
	"github.com/playmatatu/pong/internal/migrations"
	"github.com/playmatatu/pong/internal/redis"
	"github.com/playmatatu/pong/internal/session"
	"github.com/playmatatu/pong/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres is optional: without it match results are not kept.
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
	} else {
		log.Println("[DB] DATABASE_URL not set; match history disabled")
	}

	// Redis is optional: without it snapshots live only in memory and
	// events are delivered locally.
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Println("[REDIS] REDIS_URL not set; snapshot cache and event fan-out disabled")
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	matches := session.NewManager(db, rdb, cfg)
	matches.SetBroadcaster(hub)
	defer matches.Shutdown()

	ws.StartEventSubscriber(ctx, matches.Store(), hub)
	matches.StartReaper(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, rdb, cfg, matches, hub)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting pong server on port %s (arena %.0fx%.0f, %d ticks/s)", cfg.Port, cfg.ArenaWidth, cfg.ArenaHeight, cfg.TickRate)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
