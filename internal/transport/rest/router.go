package rest

import (
	"net/http"
	"wellbeing/internal/config"
	"wellbeing/internal/logger"
	"wellbeing/internal/service"
	"wellbeing/internal/transport/rest/handler"
	"wellbeing/internal/transport/rest/middleware"
	"wellbeing/internal/transport/ws"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	HistoryService   *service.HistoryService
	DashboardService *service.DashboardService
	WSHub            *ws.Hub
	Server           config.ServerConfig
	Analytics        config.AnalyticsConfig
	Logger           *logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	predictionHandler := handler.NewPredictionHandler(c.HistoryService, c.DashboardService)
	dashboardHandler := handler.NewDashboardHandler(c.HistoryService, c.DashboardService,
		c.Analytics.ChartPoints, c.Analytics.TrendDays)
	wsHandler := ws.NewHandler(c.WSHub, c.HistoryService, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.Server))
	r.Use(middleware.Instrument(c.Logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// History (static paths before {id})
	v1.HandleFunc("/predictions", predictionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/predictions", predictionHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/predictions/recent", predictionHandler.Recent).Methods("GET", "OPTIONS")
	v1.HandleFunc("/predictions/personas", predictionHandler.Personas).Methods("GET", "OPTIONS")
	v1.HandleFunc("/predictions/export", predictionHandler.Export).Methods("GET", "OPTIONS")
	v1.HandleFunc("/predictions/{id}", predictionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/predictions/{id}", predictionHandler.Delete).Methods("DELETE", "OPTIONS")

	// Dashboard
	v1.HandleFunc("/stats", dashboardHandler.Stats).Methods("GET", "OPTIONS")
	v1.HandleFunc("/dashboard", dashboardHandler.Dashboard).Methods("GET", "OPTIONS")
	v1.HandleFunc("/charts/scores", dashboardHandler.ScoreChart).Methods("GET", "OPTIONS")
	v1.HandleFunc("/charts/personas", dashboardHandler.PersonaChart).Methods("GET", "OPTIONS")
	v1.HandleFunc("/trends", dashboardHandler.Trends).Methods("GET", "OPTIONS")

	v1.HandleFunc("/ws/dashboard", wsHandler.DashboardWS).Methods("GET")

	// Admin routes (bulk destructive operations)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/predictions", predictionHandler.DeleteAll).Methods("DELETE")
	adminRoutes.HandleFunc("/predictions/import", predictionHandler.Import).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(cfg config.ServerConfig) mux.MiddlewareFunc {
	allowedOrigins := orDefault(cfg.AllowedOrigins, "*")
	allowedMethods := orDefault(cfg.AllowedMethods, "GET, POST, PUT, DELETE, OPTIONS")
	allowedHeaders := orDefault(cfg.AllowedHeaders, "Content-Type, Authorization")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
