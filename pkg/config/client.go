package config

import (
	"errors"
	"fmt"
	"time"
)

// GrpcClientConfig configures the connection the CLI opens to the product service.
type GrpcClientConfig struct {
	Addr    string        `koanf:"addr"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *GrpcClientConfig) String() string {
	return NewSection("gRPC Client").
		Add("client.grpc.addr", c.Addr).
		Add("client.grpc.timeout", c.Timeout).
		String()
}

func (c *GrpcClientConfig) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, fmt.Errorf("gRPC address is not configured"))
	}
	errs = positive(errs, namedDuration{"client.grpc.timeout", c.Timeout})
	return errors.Join(errs...)
}

// ResilienceConfig tunes the retry and circuit breaker interceptors of the gRPC client.
type ResilienceConfig struct {
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

type RetryConfig struct {
	MaxAttempts    uint          `koanf:"maxattempts"`
	InitialBackoff time.Duration `koanf:"initialbackoff"`
}

// CircuitBreakerConfig opens the breaker after ConsecutiveFailures failures in a row,
// or when more than ErrorRatePercent of the calls in the current window failed.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

func (c *ResilienceConfig) String() string {
	return NewSection("Resilience").
		Add("retry.maxattempts", c.Retry.MaxAttempts).
		Add("retry.initialbackoff", c.Retry.InitialBackoff).
		Add("circuitbreaker.consecutivefailures", c.CircuitBreaker.ConsecutiveFailures).
		Add("circuitbreaker.errorratepercent", c.CircuitBreaker.ErrorRatePercent).
		Add("circuitbreaker.opentimeout", c.CircuitBreaker.OpenTimeout).
		String()
}

func (c *ResilienceConfig) Validate() error {
	var errs []error
	if c.Retry.MaxAttempts == 0 {
		errs = append(errs, fmt.Errorf("retry.maxattempts must be greater than 0"))
	}
	if c.CircuitBreaker.ConsecutiveFailures == 0 {
		errs = append(errs, fmt.Errorf("circuitbreaker.consecutivefailures must be greater than 0"))
	}
	if p := c.CircuitBreaker.ErrorRatePercent; p < 0 || p > 100 {
		errs = append(errs, fmt.Errorf("circuitbreaker.errorratepercent must be between 0 and 100, got %d", p))
	}
	errs = positive(errs,
		namedDuration{"retry.initialbackoff", c.Retry.InitialBackoff},
		namedDuration{"circuitbreaker.opentimeout", c.CircuitBreaker.OpenTimeout},
	)
	return errors.Join(errs...)
}
