package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DatabaseConfig configures the PostgreSQL backend.
type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	// MaxConns caps the pool size; zero keeps the pgxpool default.
	MaxConns int32 `koanf:"maxconns"`
	// Migrate applies the embedded schema migrations on startup.
	Migrate bool `koanf:"migrate"`
}

func (c *DatabaseConfig) String() string {
	return NewSection("Database").
		Add("database.url", MaskURL(c.URL)).
		Add("database.timeout", c.Timeout).
		Add("database.maxconns", c.MaxConns).
		Add("database.migrate", c.Migrate).
		String()
}

func (c *DatabaseConfig) Validate() error {
	var errs []error
	switch u, err := url.Parse(c.URL); {
	case c.URL == "":
		errs = append(errs, fmt.Errorf("database URL is not configured"))
	case err != nil:
		errs = append(errs, fmt.Errorf("database URL is malformed: %w", err))
	case u.Scheme != "postgres" && u.Scheme != "postgresql":
		errs = append(errs, fmt.Errorf("database URL must use the postgres:// or postgresql:// scheme"))
	}
	if c.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("database.maxconns must not be negative, got %d", c.MaxConns))
	}
	errs = positive(errs, namedDuration{"database.timeout", c.Timeout})
	return errors.Join(errs...)
}

// MaskURL hides the user info of a connection URL.
func MaskURL(raw string) string {
	if raw == "" {
		return "<not configured>"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "****"
	}
	u.User = nil
	return "****@" + u.Host + u.EscapedPath()
}
