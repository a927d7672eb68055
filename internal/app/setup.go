// Package app contains the application setup for the storefront.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/platform/server"
	"github.com/abgdnv/storefront/internal/storefront"
	"github.com/abgdnv/storefront/internal/transport/rest"
	"github.com/abgdnv/storefront/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Dependencies struct {
	Catalog  catalog.Store
	Renderer *view.Renderer
	Sessions *storefront.Registry
	Metrics  *storefront.Metrics
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// SetupDependencies loads the catalog once and builds the storefront components.
// A catalog that fails to load leaves the storefront running with no products and a notice.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	loader := catalog.NewLoader(&http.Client{Timeout: cfg.Catalog.Timeout}, logger)
	store, err := loader.LoadStore(ctx, cfg.Catalog.Source, cfg.Catalog.Timeout)
	notice := ""
	if err != nil {
		logger.ErrorContext(ctx, "Unable to load catalog", "source", cfg.Catalog.Source, "error", err)
		notice = catalog.FallbackMessage
	}
	return NewDependencies(store, notice, cfg.Session, logger)
}

// NewDependencies wires the components around an already loaded catalog.
func NewDependencies(store catalog.Store, notice string, sessionCfg config.SessionConfig, logger *slog.Logger) (*Dependencies, error) {
	renderer, err := view.NewRenderer(store, notice)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := storefront.NewMetrics(reg)

	sessions := storefront.NewRegistry(func() *storefront.Controller {
		return storefront.NewController(store, renderer, logger)
	}, sessionCfg.TTL, metrics, logger)

	return &Dependencies{
		Catalog:  store,
		Renderer: renderer,
		Sessions: sessions,
		Metrics:  metrics,
		Registry: reg,
		Logger:   logger,
	}, nil
}

// SetupHttpHandler initializes the router and routes of the storefront.
func SetupHttpHandler(deps *Dependencies, cookie, assetsDir string) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps, cookie, assetsDir)
	return mux
}

// wireRoutes sets up the HTTP routes of the storefront.
func wireRoutes(mux *chi.Mux, deps *Dependencies, cookie, assetsDir string) {
	handler := rest.NewHandler(deps.Catalog, deps.Renderer, deps.Sessions, deps.Metrics, cookie, deps.Logger)
	handler.RegisterRoutes(mux)

	mux.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	if assetsDir != "" {
		mux.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(assetsDir))))
	}
}

// SetupHttpServer creates and configures the HTTP server of the storefront.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, cfg.Session.Cookie, cfg.Assets.Dir)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
