package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/listings-service/internal/delivery/http/handler"
	"github.com/user/listings-service/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HandleHealthCheck)
	mux.HandleFunc("GET /api/vehicles", h.HandleVehicles)
	mux.HandleFunc("GET /api/vehicles/{id}", h.HandleVehicleByID)
	mux.HandleFunc("GET /api/filter-options", h.HandleFilterOptions)
	mux.HandleFunc("GET /api/rates", h.HandleRates)
	mux.HandleFunc("GET /api/export", h.HandleExport)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Apply middlewares
	var chainedHandler http.Handler = mux
	chainedHandler = middleware.Metrics(chainedHandler)
	chainedHandler = middleware.Logging(chainedHandler)

	return chainedHandler
}
