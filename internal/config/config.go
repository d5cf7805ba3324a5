package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config keeps runtime settings for the server and the background jobs.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" default:"todo_planner.db"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`

	// Sessions
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	SessionCookie string        `envconfig:"SESSION_COOKIE" default:"todo-token"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`

	// Notifications
	TelegramToken    string        `envconfig:"TELEGRAM_TOKEN"`
	ReminderInterval time.Duration `envconfig:"REMINDER_INTERVAL" default:"1m"`
	DigestTime       string        `envconfig:"DIGEST_TIME" default:"08:00"`
	Timezone         string        `envconfig:"TIMEZONE" default:"UTC"`

	PredefinedCategories []string `envconfig:"PREDEFINED_CATEGORIES" default:"Important,Planned"`
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.DigestTime = strings.TrimSpace(cfg.DigestTime)
	cfg.PredefinedCategories = trimAll(cfg.PredefinedCategories)
	return cfg, cfg.Validate()
}

// Validate checks values envconfig cannot express.
func (c Config) Validate() error {
	var errs []error
	if len(c.SessionSecret) < 16 {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least 16 characters"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive"))
	}
	if c.ReminderInterval <= 0 {
		errs = append(errs, fmt.Errorf("REMINDER_INTERVAL must be positive"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	return errors.Join(errs...)
}

// Location is the zone used for the daily digest schedule.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TelegramEnabled reports whether a bot token is configured.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
