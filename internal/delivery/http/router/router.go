package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/delivery/http/handler"
	"github.com/user/advisory-service/internal/delivery/http/middleware"
	"github.com/user/advisory-service/pkg/metrics"
)

func New(h *handler.Handler, logger *zap.Logger) http.Handler {
	metrics.Init()

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/scrape", h.HandleSubmitScrape)
		r.Get("/status", h.HandleGetScrapeStatus)
		r.Get("/advisories/{country}", h.HandleGetAdvisory)
		r.Get("/countries/{id}/{table}", h.HandleGetCountryTable)
	})

	return r
}
