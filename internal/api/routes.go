package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Read-only warehouse routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/prices/{symbol}", handler.GetPrices).Methods("GET")
	api.HandleFunc("/prices/{symbol}/{date}", handler.GetPrice).Methods("GET")
	api.HandleFunc("/watermarks", handler.GetWatermarks).Methods("GET")

	return r
}
