package routes

import (
	"net/http"

	"aquagrid/internal/config"
	"aquagrid/internal/handlers"
	"aquagrid/internal/logger"
	"aquagrid/internal/metrics"
	mdlwr "aquagrid/internal/middleware"
	"aquagrid/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(ds *services.Dataset, svc handlers.Simulator, cfg *config.Config, logr *logger.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mdlwr.NewAccessLog(logr.Logger, m).Handler)

	// The map client is served from a different origin and sends no credentials.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(ds, cfg.CoolingProfile)
	layerHandler := handlers.NewLayerHandler(ds)
	simulationHandler := handlers.NewSimulationHandler(svc, logr.Logger)

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/counties", layerHandler.GetCounties)
		r.Get("/utilities", layerHandler.GetUtilities)
		r.Get("/data-centers", layerHandler.GetDataCenters)
		r.Post("/simulate", simulationHandler.Simulate)
	})

	return r
}
