// Package app contains the application setup for the product service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/giftcatalog/internal/config"
	grpcImpl "github.com/abgdnv/giftcatalog/internal/product/grpc"
	"github.com/abgdnv/giftcatalog/internal/product/handler"
	"github.com/abgdnv/giftcatalog/internal/product/messages"
	"github.com/abgdnv/giftcatalog/internal/product/service"
	"github.com/abgdnv/giftcatalog/internal/product/store"
	productv1 "github.com/abgdnv/giftcatalog/pkg/api/product/v1"
	"github.com/abgdnv/giftcatalog/pkg/auth"
	pkgconfig "github.com/abgdnv/giftcatalog/pkg/config"
	"github.com/abgdnv/giftcatalog/pkg/messaging"
	"github.com/abgdnv/giftcatalog/pkg/server"
	"github.com/abgdnv/giftcatalog/pkg/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const serviceName = "product"

type Dependencies struct {
	ProductService service.ProductService
	Translator     *messages.Translator
	// Verifier is nil when authentication is disabled.
	Verifier auth.Verifier
	// Registry and Metrics are nil when metrics are disabled.
	Registry    *prometheus.Registry
	Metrics     *web.Metrics
	MetricsPath string
	Logger      *slog.Logger
}

// NewStore creates the product store for the configured backend.
// dbPool is only used by the postgres backend.
func NewStore(cfg pkgconfig.StorageConfig, dbPool *pgxpool.Pool) (store.ProductStore, error) {
	switch cfg.Backend {
	case pkgconfig.StorageMemory:
		seed := make([]store.Product, 0, len(cfg.Seed))
		for _, p := range cfg.Seed {
			seed = append(seed, store.Product{ID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL})
		}
		return store.NewInMemoryStore(seed...), nil
	case pkgconfig.StoragePostgres:
		if dbPool == nil {
			return nil, fmt.Errorf("storage backend %s requires a database pool", cfg.Backend)
		}
		return store.NewPgStore(dbPool), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}

// SetupDependencies builds the service graph on top of an existing store.
// publisher and verifier may be nil.
func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, verifier auth.Verifier, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	translator, err := messages.NewTranslator(cfg.Messages.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	deps := &Dependencies{
		ProductService: service.NewService(productStore, publisher, logger),
		Translator:     translator,
		Verifier:       verifier,
		Logger:         logger,
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		deps.Registry = reg
		deps.Metrics = web.NewMetrics(reg)
		deps.MetricsPath = cfg.Metrics.Path
	}

	return deps, nil
}

// SetupHttpHandler initializes the router with middleware, metrics and product routes.
// Used by E2E tests to set up the HTTP server without listening.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	var protect func(http.Handler) http.Handler
	if deps.Verifier != nil {
		protect = web.AuthMiddleware(deps.Verifier, deps.Logger)
	}
	opts := make([]server.RouterOption, 0, 2)
	if deps.Metrics != nil {
		opts = append(opts, server.WithMetrics(deps.Metrics, serviceName, deps.MetricsPath, deps.Registry))
	}
	productHandler := handler.NewHandler(deps.ProductService, deps.Translator, deps.Logger)
	opts = append(opts, server.WithRoutes(productHandler, protect))
	return server.NewRouter(deps.Logger, opts...)
}

// SetupHttpServer creates the traced HTTP server of the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps), serviceName+"-http")
}

// SetupGrpcServer initializes the gRPC server with the product and health services.
func SetupGrpcServer(deps *Dependencies, cfg pkgconfig.GrpcServerConfig) (*grpc.Server, *health.Server) {
	productRegisterFunc := func(s *grpc.Server) {
		productv1.RegisterProductServiceServer(s, grpcImpl.NewServer(deps.ProductService, deps.Logger))
	}
	return server.NewGRPCServer(cfg, deps.Logger, productRegisterFunc)
}
