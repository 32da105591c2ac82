package server

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/giftcatalog/pkg/config"
	"github.com/abgdnv/giftcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Routes mounts an API on a router, wrapping its mutating routes in protect when protect is non-nil.
type Routes interface {
	RegisterRoutes(r chi.Router, protect func(http.Handler) http.Handler)
}

type RouterOption func(*routerOptions)

type routerOptions struct {
	middlewares []func(http.Handler) http.Handler
	mounts      []func(chi.Router)
}

// WithMetrics records every request in m under service and serves gatherer on path.
func WithMetrics(m *web.Metrics, service, path string, gatherer prometheus.Gatherer) RouterOption {
	return func(o *routerOptions) {
		o.middlewares = append(o.middlewares, m.Middleware(service))
		o.mounts = append(o.mounts, func(r chi.Router) {
			r.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		})
	}
}

// WithRoutes mounts routes, guarding mutations with protect.
func WithRoutes(routes Routes, protect func(http.Handler) http.Handler) RouterOption {
	return func(o *routerOptions) {
		o.mounts = append(o.mounts, func(r chi.Router) { routes.RegisterRoutes(r, protect) })
	}
}

// NewRouter creates a chi router with request ID injection, structured logging and
// panic recovery, followed by the middleware and routes of opts.
func NewRouter(logger *slog.Logger, opts ...RouterOption) *chi.Mux {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))
	mux.Use(o.middlewares...)
	for _, mount := range o.mounts {
		mount(mux)
	}
	return mux
}

// NewHTTPServer serves handler on cfg.Addr with a server span named operation for every request.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler, operation string) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(handler, operation),
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}
