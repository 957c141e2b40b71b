package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/irah1999/cloud-flair/internal/stream/cloudflare"
)

// service config, loaded from the environment and an optional .env file
type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	AppEnv string `env:"APP_ENV" envDefault:"production"`

	DBDriver   string   `env:"DB_DRIVER" envDefault:"postgres"`
	Postgres   Postgres `envPrefix:"POSTGRES_"`
	SQLitePath string   `env:"SQLITE_PATH" envDefault:"interviews.db"`

	// RedisAddr enables the cross-instance provisioning lock when set.
	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	ProvisionLockTTL  time.Duration `env:"PROVISION_LOCK_TTL" envDefault:"30s"`
	ProvisionLockWait time.Duration `env:"PROVISION_LOCK_WAIT" envDefault:"20s"`

	DisconnectOnSubmit bool `env:"DISCONNECT_ON_SUBMIT" envDefault:"false"`

	RecordingSweepEnabled  bool          `env:"RECORDING_SWEEP_ENABLED" envDefault:"false"`
	RecordingSweepSchedule string        `env:"RECORDING_SWEEP_SCHEDULE" envDefault:"*/5 * * * *"`
	RecordingSweepWindow   time.Duration `env:"RECORDING_SWEEP_WINDOW" envDefault:"24h"`
	RecordingSweepBatch    int           `env:"RECORDING_SWEEP_BATCH" envDefault:"100"`

	// JoinRateLimit is the number of join requests allowed per client IP per minute, 0 disables it.
	JoinRateLimit int `env:"JOIN_RATE_LIMIT" envDefault:"30"`

	MonitorJWTSecret string `env:"MONITOR_JWT_SECRET"`

	StreamProvider string            `env:"STREAM_PROVIDER" envDefault:"cloudflare"`
	Cloudflare     cloudflare.Config `envPrefix:"CLOUDFLARE_"`
}

type Postgres struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	DB       string `env:"DB" envDefault:"postgres"`
	Port     string `env:"PORT" envDefault:"5432"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// DSN builds the libpq connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		p.Host, p.User, p.Password, p.DB, p.Port, p.SSLMode)
}

// LoadConfig reads a .env file if present, then the environment.
// Values already in the environment take precedence.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func validateConfig(cfg *Config) error {
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return errors.New("unsupported DB_DRIVER: " + cfg.DBDriver + ". Currently supported: postgres, sqlite")
	}
	if cfg.StreamProvider != "cloudflare" {
		return errors.New("unsupported STREAM_PROVIDER: " + cfg.StreamProvider + ". Currently supported: cloudflare")
	}
	if cfg.ProvisionLockTTL <= 0 {
		return errors.New("PROVISION_LOCK_TTL must be positive")
	}
	// the lock must outlive the provider call it guards
	if cfg.Cloudflare.Timeout > 0 && cfg.ProvisionLockTTL <= cfg.Cloudflare.Timeout {
		return fmt.Errorf("PROVISION_LOCK_TTL (%s) must be longer than CLOUDFLARE_TIMEOUT (%s)",
			cfg.ProvisionLockTTL, cfg.Cloudflare.Timeout)
	}
	if cfg.JoinRateLimit < 0 {
		return errors.New("JOIN_RATE_LIMIT must not be negative")
	}
	// Cloudflare credentials are checked by cloudflare.NewClient
	return nil
}
