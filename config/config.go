package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Session    SessionConfig    `yaml:"session"`
	Logging    LoggingConfig    `yaml:"logging"`
	QR         QRConfig         `yaml:"qr"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Desks      []DeskConfig     `yaml:"desks"`

	// Warnings lists defaults applied in place of invalid values, for the caller to log.
	Warnings []string `yaml:"-"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port" env:"DESK_PORT, overwrite"`
	TemplatesDir    string  `yaml:"templates_dir"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver" env:"DESK_DB_DRIVER, overwrite"`
	DSN                    string `yaml:"dsn" env:"DESK_DB_DSN, overwrite"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	Secret     string        `yaml:"secret" env:"DESK_SESSION_SECRET, overwrite"`
	CookieName string        `yaml:"cookie_name"`
	TTLHours   int           `yaml:"ttl_hours"`
	TTL        time.Duration `yaml:"-"`
	Secure     bool          `yaml:"secure"`
}

// LoggingConfig controls the application logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"DESK_LOG_LEVEL, overwrite"`
	Pretty bool   `yaml:"pretty"`
}

// QRConfig controls the confirmation QR image.
type QRConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for desk-freed web push notifications.
// Push is disabled when either key is empty.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key" env:"DESK_VAPID_PUBLIC_KEY, overwrite"`
	PrivateKey string `yaml:"vapid_private_key" env:"DESK_VAPID_PRIVATE_KEY, overwrite"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// DeskConfig is a bookable desk as declared in the config file.
type DeskConfig struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	Available *bool  `yaml:"available"`
}

// DefaultDesks is used when the config file declares no desks.
var DefaultDesks = []DeskConfig{
	{ID: 1, Name: "Desk 1"},
	{ID: 2, Name: "Desk 2"},
	{ID: 3, Name: "Desk 3"},
}

// Load reads the configuration from the given path and applies environment overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "desks.db"
	}

	if cfg.Session.Secret == "" {
		return fmt.Errorf("session.secret must be set (or DESK_SESSION_SECRET)")
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "desk_session"
	}
	if cfg.Session.TTLHours <= 0 {
		cfg.Session.TTLHours = 24
	}
	cfg.Session.TTL = time.Duration(cfg.Session.TTLHours) * time.Hour

	if cfg.QR.Size <= 0 {
		cfg.QR.Size = 128
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.Warnings = append(cfg.Warnings, "worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if len(cfg.Desks) == 0 {
		cfg.Desks = DefaultDesks
	}
	seen := make(map[int64]bool, len(cfg.Desks))
	for _, d := range cfg.Desks {
		if d.ID <= 0 {
			return fmt.Errorf("desk %q has invalid id %d", d.Name, d.ID)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate desk id %d", d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}
