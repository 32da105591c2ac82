package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

type namedDuration struct {
	name  string
	value time.Duration
}

// HTTPConfig configures the REST listener.
type HTTPConfig struct {
	Port           int               `koanf:"port"`
	MaxHeaderBytes int               `koanf:"maxHeaderBytes"`
	Timeout        HTTPTimeoutConfig `koanf:"timeout"`
}

type HTTPTimeoutConfig struct {
	Read       time.Duration `koanf:"read"`
	Write      time.Duration `koanf:"write"`
	Idle       time.Duration `koanf:"idle"`
	ReadHeader time.Duration `koanf:"readHeader"`
}

// Addr is the listen address, all interfaces on Port.
func (c *HTTPConfig) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c *HTTPConfig) String() string {
	return NewSection("HTTP Server").
		Add("server.port", c.Port).
		Add("server.maxHeaderBytes", c.MaxHeaderBytes).
		Add("server.timeout.read", c.Timeout.Read).
		Add("server.timeout.write", c.Timeout.Write).
		Add("server.timeout.idle", c.Timeout.Idle).
		Add("server.timeout.readHeader", c.Timeout.ReadHeader).
		String()
}

// Validate reports every invalid field at once.
func (c *HTTPConfig) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP server port: %d", c.Port))
	}
	if c.MaxHeaderBytes < 0 {
		errs = append(errs, fmt.Errorf("HTTP server maxHeaderBytes must not be negative, got %d", c.MaxHeaderBytes))
	}
	errs = positive(errs,
		namedDuration{"server.timeout.read", c.Timeout.Read},
		namedDuration{"server.timeout.write", c.Timeout.Write},
		namedDuration{"server.timeout.idle", c.Timeout.Idle},
		namedDuration{"server.timeout.readHeader", c.Timeout.ReadHeader},
	)
	return errors.Join(errs...)
}

// GrpcServerConfig configures the gRPC listener.
type GrpcServerConfig struct {
	Port              string `koanf:"port"`
	ReflectionEnabled bool   `koanf:"reflection"`
}

func (c *GrpcServerConfig) Addr() string {
	return net.JoinHostPort("", c.Port)
}

func (c *GrpcServerConfig) String() string {
	return NewSection("gRPC Server").
		Add("grpc.port", c.Port).
		Add("grpc.reflection", c.ReflectionEnabled).
		String()
}

func (c *GrpcServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("gRPC port is not configured")
	}
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid gRPC port: %q", c.Port)
	}
	return nil
}

// PProfConfig enables the net/http/pprof listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	return NewSection("PProf").
		Add("pprof.enabled", c.Enabled).
		AddIf(c.Enabled, "pprof.addr", c.Addr).
		String()
}

func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("pprof is enabled but address %q is invalid: %w", c.Addr, err)
	}
	return nil
}

// ShutdownConfig bounds the graceful stop of every listener.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return NewSection("Shutdown").Add("shutdown.timeout", c.Timeout).String()
}

func (c *ShutdownConfig) Validate() error {
	return errors.Join(positive(nil, namedDuration{"shutdown.timeout", c.Timeout})...)
}
