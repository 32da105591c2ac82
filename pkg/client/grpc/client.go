// Package grpcclient builds resilient gRPC client connections.
package grpcclient

import (
	"fmt"

	"github.com/abgdnv/giftcatalog/pkg/client/grpc/interceptors"
	"github.com/abgdnv/giftcatalog/pkg/config"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// NewClient creates a client connection to cfg.Addr.
// Every call is bounded by cfg.Timeout, transient errors are retried and guarded by a circuit
// breaker named breakerName.
func NewClient(breakerName string, cfg config.GrpcClientConfig, res config.ResilienceConfig) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(cfg.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			interceptors.UnaryClientTimeoutInterceptor(cfg.Timeout),
			interceptors.NewRetryInterceptor(res.Retry),
			interceptors.NewCircuitBreaker(breakerName, res.CircuitBreaker),
		),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client for %s: %w", cfg.Addr, err)
	}
	return conn, nil
}
