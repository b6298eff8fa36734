package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaspardpetit/promptrelay/internal/api"
	"github.com/gaspardpetit/promptrelay/internal/config"
	"github.com/gaspardpetit/promptrelay/internal/mcpserver"
	"github.com/gaspardpetit/promptrelay/internal/metrics"
)

// Service is everything the HTTP surfaces need from the relay.
type Service interface {
	api.Service
	mcpserver.Service
}

// New constructs the HTTP handler for the server. When preg is nil a private
// registry holding the relay collectors is created.
func New(cfg config.ServerConfig, svc Service, version string, preg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	for _, m := range api.MiddlewareChain() {
		r.Use(m)
	}

	if preg == nil {
		preg = prometheus.NewRegistry()
		metrics.Register(preg)
	}

	impl := &api.API{Relay: svc}
	r.Get("/healthz", impl.GetHealthz)
	r.Mount("/api", api.NewRouter(impl))
	if cfg.MCPEnabled {
		r.Handle("/mcp", mcpserver.NewHandler(svc, version))
	}
	if cfg.MetricsOnMainPort() {
		r.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))
	}
	r.Get("/", IndexHandler())

	return r
}

// MetricsHandler serves preg on a dedicated listener.
func MetricsHandler(preg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))
	return mux
}
