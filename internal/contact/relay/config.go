// internal/contact/relay/config.go
package relay

import (
	"fmt"
	"time"

	"devstudio-site/internal/common/config"
)

// Route is the canonical relay endpoint; AliasRoute is kept for form posts
// that target the section anchor path.
const (
	Route      = "/api/contact"
	AliasRoute = "/contact"
)

type Config struct {
	// MaxBodyBytes caps the request body. Larger bodies are invalid payloads.
	MaxBodyBytes int64
	Idempotency  IdempotencyConfig
}

type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

func DefaultConfig() *Config {
	return &Config{
		MaxBodyBytes: 64 << 10,
		Idempotency: IdempotencyConfig{
			TTL:    24 * time.Hour,
			Prefix: "contact:idem:",
		},
	}
}

// LoadConfig derives the relay settings from the contact section.
func LoadConfig(cfg config.ContactConfig) *Config {
	c := DefaultConfig()
	c.Idempotency.Enabled = cfg.Idempotency.Enabled
	if cfg.Idempotency.TTL > 0 {
		c.Idempotency.TTL = config.GetDuration(cfg.Idempotency.TTL)
	}
	if cfg.Idempotency.Prefix != "" {
		c.Idempotency.Prefix = cfg.Idempotency.Prefix
	}
	return c
}

func (c *Config) Validate() error {
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}
	if c.Idempotency.Enabled && c.Idempotency.TTL <= 0 {
		return fmt.Errorf("idempotency ttl must be positive")
	}
	return nil
}
