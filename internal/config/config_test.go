package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ARENA_WIDTH", "")
	t.Setenv("TICK_RATE", "")

	cfg := Load()
	if cfg.ArenaWidth != 800 || cfg.ArenaHeight != 500 {
		t.Errorf("expected 800x500 arena, got %.0fx%.0f", cfg.ArenaWidth, cfg.ArenaHeight)
	}
	if cfg.TickRate != 60 {
		t.Errorf("expected 60 ticks/s, got %d", cfg.TickRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ARENA_WIDTH", "1024")
	t.Setenv("ARENA_HEIGHT", "640")
	t.Setenv("TICK_RATE", "120")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("SNAPSHOT_EVERY_TICKS", "not-a-number")

	cfg := Load()
	if a := cfg.Arena(); a.Width != 1024 || a.Height != 640 {
		t.Errorf("unexpected arena %+v", a)
	}
	if cfg.TickRate != 120 {
		t.Errorf("expected tick rate 120, got %d", cfg.TickRate)
	}
	if !cfg.MigrateOnStart {
		t.Errorf("expected MigrateOnStart")
	}
	if cfg.SnapshotEveryTicks != 30 {
		t.Errorf("bad int should fall back to default, got %d", cfg.SnapshotEveryTicks)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"arena too short", func(c *Config) { c.ArenaHeight = 60 }, true},
		{"arena too narrow", func(c *Config) { c.ArenaWidth = 100 }, true},
		{"zero tick rate", func(c *Config) { c.TickRate = 0 }, true},
		{"production default secret", func(c *Config) { c.Environment = "production" }, true},
		{"production real secret", func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "s3cret"
		}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "")
			t.Setenv("JWT_SECRET", "")
			cfg := Load()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}
