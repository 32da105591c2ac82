// Package config holds the configuration of the product service.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abgdnv/giftcatalog/pkg/config"
	"github.com/abgdnv/giftcatalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Storage    config.StorageConfig    `koanf:"storage"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Messages   config.MessagesConfig   `koanf:"messages"`
	Auth       config.AuthConfig       `koanf:"auth"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Metrics    config.MetricsConfig    `koanf:"metrics"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Client     ClientConfig            `koanf:"client"`
}

// ClientConfig configures the gRPC client used by the CLI commands.
type ClientConfig struct {
	GRPC       config.GrpcClientConfig `koanf:"grpc"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
}

// serverSections lists the sections the serve command depends on, in dump order.
func (c *Config) serverSections() []interface {
	fmt.Stringer
	configloader.Validator
} {
	sections := []interface {
		fmt.Stringer
		configloader.Validator
	}{&c.HTTPServer, &c.GRPC, &c.Storage}
	if c.Storage.Backend == config.StoragePostgres {
		sections = append(sections, &c.Database)
	}
	return append(sections,
		&c.Messages, &c.Auth, &c.NATS, &c.Telemetry, &c.Metrics, &c.Log, &c.PProf, &c.Shutdown)
}

func (c *Config) String() string {
	var b strings.Builder
	for _, s := range c.serverSections() {
		b.WriteString(s.String())
	}
	return b.String()
}

// Validate checks the sections needed to serve requests and reports all problems together.
func (c *Config) Validate() error {
	var errs []error
	for _, s := range c.serverSections() {
		errs = append(errs, s.Validate())
	}
	return errors.Join(errs...)
}

// ClientConfigLoader wraps Config so the CLI client commands only validate the client section.
type ClientConfigLoader struct {
	Config `koanf:",squash"`
}

func (c *ClientConfigLoader) Validate() error {
	return errors.Join(c.Client.GRPC.Validate(), c.Client.Resilience.Validate())
}

func (c *ClientConfigLoader) String() string {
	return c.Client.GRPC.String() + c.Client.Resilience.String()
}

// MigrateConfigLoader wraps Config so the migrate command only validates the database section.
type MigrateConfigLoader struct {
	Config `koanf:",squash"`
}

func (c *MigrateConfigLoader) Validate() error {
	return c.Database.Validate()
}

// TokenConfigLoader wraps Config so the token command only validates the IdP client credentials.
type TokenConfigLoader struct {
	Config `koanf:",squash"`
}

func (c *TokenConfigLoader) Validate() error {
	return c.Auth.IdP.ValidateTokenClient()
}
