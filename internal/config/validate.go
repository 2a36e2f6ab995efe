package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Auth.DeviceTokenTTL <= 0 {
		return fmt.Errorf("auth.device_token_ttl must be > 0 (got %v)", c.Auth.DeviceTokenTTL)
	}

	if c.Sync.PullPageSize <= 0 {
		return fmt.Errorf("sync.pull_page_size must be > 0 (got %d)", c.Sync.PullPageSize)
	}
	if c.Sync.PullPageSize > 1000 {
		return fmt.Errorf("sync.pull_page_size must be <= 1000 (got %d)", c.Sync.PullPageSize)
	}

	if c.Sync.MaxPushOps <= 0 {
		return fmt.Errorf("sync.max_push_ops must be > 0 (got %d)", c.Sync.MaxPushOps)
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("database.max_conns (%d) must be >= database.min_conns (%d)",
			c.Database.MaxConns, c.Database.MinConns)
	}

	return nil
}
