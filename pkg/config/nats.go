package config

import (
	"errors"
	"fmt"
	"time"
)

// NATSConfig configures the JetStream publisher of product events.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Stream  string        `koanf:"stream"`
	// MaxAge bounds how long events stay in the stream; zero keeps them forever.
	MaxAge time.Duration `koanf:"maxage"`
}

func (c *NATSConfig) String() string {
	return NewSection("NATS").
		Add("nats.enabled", c.Enabled).
		AddIf(c.Enabled, "nats.url", c.Url).
		AddIf(c.Enabled, "nats.timeout", c.Timeout).
		AddIf(c.Enabled, "nats.stream", c.Stream).
		AddIf(c.Enabled, "nats.maxage", c.MaxAge).
		String()
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	if c.Url == "" {
		errs = append(errs, fmt.Errorf("NATS URL is not configured"))
	}
	if c.Stream == "" {
		errs = append(errs, fmt.Errorf("NATS stream is not configured"))
	}
	if c.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("nats.maxage must not be negative, got %v", c.MaxAge))
	}
	errs = positive(errs, namedDuration{"nats.timeout", c.Timeout})
	return errors.Join(errs...)
}
