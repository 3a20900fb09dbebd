package rest

import (
	"context"
	"net/http"
	"product-filter-service/internal/core/port"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

func NewServer(cfg ServerConfig,
	filterHandler *FilterHandler,
	priceRangeHandler *PriceRangeHandler,
	healthHandler *HealthHandler,
	baseLogger port.LoggerPort) *Server {

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, filterHandler, priceRangeHandler, healthHandler, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// NewRouter wires middleware and routes; split out so handlers can be tested without a listener.
func NewRouter(cfg ServerConfig,
	filterHandler *FilterHandler,
	priceRangeHandler *PriceRangeHandler,
	healthHandler *HealthHandler,
	baseLogger port.LoggerPort) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Trace-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products/filter", filterHandler.Filter)
		r.Post("/products/filter", filterHandler.Filter)
		r.Post("/products/filter/reset", filterHandler.Reset)

		r.Get("/products/price-range", priceRangeHandler.GetPriceRange)
		r.Delete("/products/price-range/cache", priceRangeHandler.InvalidateCache)
	})

	return r
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
