package cloudflare

import (
	"errors"
	"time"
)

const defaultBaseURL = "https://api.cloudflare.com/client/v4"

// Config holds Cloudflare Stream credentials and client limits.
type Config struct {
	AccountID         string        `env:"ACCOUNT_ID"`
	APIToken          string        `env:"API_TOKEN"`
	BaseURL           string        `env:"API_BASE_URL" envDefault:"https://api.cloudflare.com/client/v4"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"15s"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND" envDefault:"4"`
}

// Validate checks that the credentials are present and fills defaults.
func (c *Config) Validate() error {
	if c.AccountID == "" {
		return errors.New("CLOUDFLARE_ACCOUNT_ID is required")
	}
	if c.APIToken == "" {
		return errors.New("CLOUDFLARE_API_TOKEN is required")
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 4
	}
	return nil
}
