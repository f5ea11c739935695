package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all doorboard settings, loaded from DOORBOARD_* environment
// variables. A .env file is honored in dev (loaded by main before Parse).
type Config struct {
	HTTPAddr string `env:"DOORBOARD_HTTP_ADDR" envDefault:":8080"`

	// DB
	Env    string `env:"DOORBOARD_ENV" envDefault:"dev"` // "dev" | "prod"
	DBPath string `env:"DOORBOARD_DB_PATH" envDefault:"./data/doorboard.db"`

	// Presence aggregation
	DebounceSeconds int `env:"DOORBOARD_DEBOUNCE_SECONDS" envDefault:"300"`

	// Feed paging
	FeedDefaultLimit int `env:"DOORBOARD_FEED_DEFAULT_LIMIT" envDefault:"50"`
	FeedMaxLimit     int `env:"DOORBOARD_FEED_MAX_LIMIT" envDefault:"200"`

	// Kiosk display page
	CodeWord      string   `env:"DOORBOARD_CODE_WORD"` // empty = no gate
	Doors         []string `env:"DOORBOARD_DOORS"`     // allowlist; empty = any
	PollSeconds   int      `env:"DOORBOARD_DISPLAY_POLL_SECONDS" envDefault:"7"`
	CardCap       int      `env:"DOORBOARD_DISPLAY_CARD_CAP" envDefault:"24"`
	CustomCSSPath string   `env:"DOORBOARD_DISPLAY_CSS_PATH"` // overrides the built-in stylesheet

	// Photo resolution. {uuid} and {uid} are substituted per user.
	PhotoURLTemplate string `env:"DOORBOARD_PHOTO_URL_TEMPLATE"`

	// Presence retention
	RetentionDays      int `env:"DOORBOARD_RETENTION_DAYS" envDefault:"0"` // 0 = keep forever
	PruneIntervalHours int `env:"DOORBOARD_PRUNE_INTERVAL_HOURS" envDefault:"6"`

	// Logging
	LogLevel  string `env:"DOORBOARD_LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"DOORBOARD_LOG_PRETTY" envDefault:"false"`
}

// Load parses the environment into a Config and normalizes it.
// Out-of-range numeric settings fall back to their defaults rather than
// failing: the kiosk should come up even with a sloppy environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}

	if cfg.DebounceSeconds < 0 {
		cfg.DebounceSeconds = 300
	}
	if cfg.FeedMaxLimit < 1 {
		cfg.FeedMaxLimit = 200
	}
	if cfg.FeedDefaultLimit < 1 || cfg.FeedDefaultLimit > cfg.FeedMaxLimit {
		cfg.FeedDefaultLimit = min(50, cfg.FeedMaxLimit)
	}
	if cfg.PollSeconds < 1 {
		cfg.PollSeconds = 7
	}
	if cfg.CardCap < 1 {
		cfg.CardCap = 24
	}
	if cfg.RetentionDays < 0 {
		cfg.RetentionDays = 0
	}
	if cfg.PruneIntervalHours < 1 {
		cfg.PruneIntervalHours = 6
	}

	doors := make([]string, 0, len(cfg.Doors))
	for _, d := range cfg.Doors {
		if d = strings.TrimSpace(d); d != "" {
			doors = append(doors, d)
		}
	}
	cfg.Doors = doors

	return cfg, nil
}
