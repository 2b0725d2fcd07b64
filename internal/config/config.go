package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/playmatatu/pong/internal/game"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Arena
	ArenaWidth  float64
	ArenaHeight float64

	// Match loop
	TickRate           int
	SnapshotEveryTicks int
	MaxActiveMatches   int

	// Abandoned match reaping
	MatchIdleSeconds  int
	ReaperPollSeconds int

	// Security
	JWTSecret             string
	PlayerTokenTTLMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Arena
		ArenaWidth:  getEnvFloat("ARENA_WIDTH", game.DefaultArenaWidth),
		ArenaHeight: getEnvFloat("ARENA_HEIGHT", game.DefaultArenaHeight),

		// Match loop
		TickRate:           getEnvInt("TICK_RATE", game.DefaultTickRate),
		SnapshotEveryTicks: getEnvInt("SNAPSHOT_EVERY_TICKS", 30),
		MaxActiveMatches:   getEnvInt("MAX_ACTIVE_MATCHES", 200),

		// Abandoned match reaping
		MatchIdleSeconds:  getEnvInt("MATCH_IDLE_SECONDS", 300),
		ReaperPollSeconds: getEnvInt("REAPER_POLL_SECONDS", 15),

		// Security
		JWTSecret:             getEnv("JWT_SECRET", "change-me-in-production"),
		PlayerTokenTTLMinutes: getEnvInt("PLAYER_TOKEN_TTL_MINUTES", 120),
	}
}

// Arena returns the configured playing field.
func (c *Config) Arena() game.Arena {
	return game.Arena{Width: c.ArenaWidth, Height: c.ArenaHeight}
}

// Validate rejects settings the match loop cannot run with.
func (c *Config) Validate() error {
	if err := c.Arena().Validate(); err != nil {
		return fmt.Errorf("invalid arena: %w", err)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("TICK_RATE must be positive, got %d", c.TickRate)
	}
	if c.Environment == "production" && c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
