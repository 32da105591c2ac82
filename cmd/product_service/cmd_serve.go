package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/giftcatalog/internal/config"
	"github.com/abgdnv/giftcatalog/internal/product/app"
	"github.com/abgdnv/giftcatalog/internal/product/migrations"
	"github.com/abgdnv/giftcatalog/pkg/auth"
	"github.com/abgdnv/giftcatalog/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/giftcatalog/pkg/config"
	"github.com/abgdnv/giftcatalog/pkg/config/configloader"
	"github.com/abgdnv/giftcatalog/pkg/messaging"
	"github.com/abgdnv/giftcatalog/pkg/nats"
	"github.com/abgdnv/giftcatalog/pkg/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// startupTimeout bounds calls to external systems made before the servers start.
const startupTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long: `Starts the REST API, the gRPC API and, when enabled, the pprof server.
All servers are stopped gracefully on SIGINT or SIGTERM within shutdown.timeout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

// run loads the configuration, builds the dependencies and runs the servers until ctx is done.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.LoadFile[*config.Config](serviceName, configFile)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, serviceName+"-service", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Tracer provider shutdown failed", "error", err)
			}
		}()
	}

	var dbPool *pgxpool.Pool
	if cfg.Storage.Backend == pkgconfig.StoragePostgres {
		if cfg.Database.Migrate {
			if err := migrations.Up(cfg.Database.URL); err != nil {
				return err
			}
			logger.Info("Database migrations applied")
		}
		pool, err := bootstrap.NewDbPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to create database connection pool: %w", err)
		}
		defer pool.Close()
		dbPool = pool
		logger.Info("Successfully connected to the database!")
	}

	productStore, err := app.NewStore(cfg.Storage, dbPool)
	if err != nil {
		return err
	}

	publisher, closePublisher, err := newPublisher(ctx, cfg.NATS, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	var verifier auth.Verifier
	if cfg.Auth.Enabled {
		startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		jwtVerifier, err := auth.NewJWTVerifier(startupCtx, cfg.Auth.IdP)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to create JWT verifier: %w", err)
		}
		verifier = jwtVerifier
	}

	deps, err := app.SetupDependencies(productStore, publisher, verifier, cfg, logger)
	if err != nil {
		return err
	}

	return serve(ctx, deps, cfg, logger)
}

// newPublisher connects to NATS and makes sure the products stream exists.
// With NATS disabled it returns a publisher that drops events.
func newPublisher(ctx context.Context, cfg pkgconfig.NATSConfig, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Enabled {
		return messaging.NopPublisher{}, func() {}, nil
	}
	nc, err := nats.NewClient(cfg, serviceName+"-service", logger)
	if err != nil {
		return nil, nil, err
	}
	js, err := nats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	spec := nats.StreamSpec{Name: cfg.Stream, Subjects: messaging.ProductsSubjects, MaxAge: cfg.MaxAge}
	if err := nats.EnsureStream(streamCtx, js, spec); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", "url", cfg.Url, "stream", cfg.Stream)
	return nats.NewNatsPublisher(js), func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("NATS drain failed", "error", err)
		}
	}, nil
}

// serve runs the HTTP, gRPC and pprof servers and shuts them down when ctx is done.
func serve(ctx context.Context, deps *app.Dependencies, cfg *config.Config, logger *slog.Logger) error {
	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer, healthServer := app.SetupGrpcServer(deps, cfg.GRPC)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		grpcAddr := cfg.GRPC.Addr()
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down gRPC server...")
		healthServer.Shutdown()
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			logger.Info("gRPC server stopped gracefully.")
			return nil
		case <-time.After(cfg.Shutdown.Timeout):
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})

	if cfg.PProf.Enabled {
		// nil handler serves http.DefaultServeMux with the net/http/pprof routes
		pprofServer := &http.Server{Addr: cfg.PProf.Addr, ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader}
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	logger.Info("Application stopped gracefully")
	return nil
}
