// Package server exposes the form service over HTTP.
package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/faciam-dev/gcform/internal/api/handler"
	"github.com/faciam-dev/gcform/internal/logger"
	"github.com/faciam-dev/gcform/internal/server/middleware"
	"github.com/faciam-dev/gcform/sdk"
)

// Config tunes the HTTP adapter.
type Config struct {
	// AllowedOrigins for CORS. Empty reads ALLOWED_ORIGINS.
	AllowedOrigins []string
	// JWTSecret enables bearer token checks on the API when set.
	JWTSecret string
}

// New builds the router. The returned API's adapter serves every route,
// /metrics and /healthz included.
func New(svc *sdk.Service, cfg Config) huma.API {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = allowedOrigins()
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	api := humachi.New(r, huma.DefaultConfig("Form API", "1.0.0"))
	api.UseMiddleware(middleware.MetricsMW)
	registerHealth(api)
	if cfg.JWTSecret != "" {
		api.UseMiddleware(middleware.JWT(api, cfg.JWTSecret))
	} else {
		logger.L.Warn("JWT_SECRET not set; API is not authenticated")
	}
	handler.Register(api, &handler.FormHandler{Svc: svc})
	return api
}
