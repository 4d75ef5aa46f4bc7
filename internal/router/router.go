package router

import (
	"net/http"

	"github.com/BerylCAtieno/sheet-insights-api/internal/config"
	"github.com/BerylCAtieno/sheet-insights-api/internal/handlers"
	"github.com/BerylCAtieno/sheet-insights-api/internal/middleware"
	"github.com/BerylCAtieno/sheet-insights-api/internal/services"
	"github.com/BerylCAtieno/sheet-insights-api/internal/utils"

	"github.com/gorilla/mux"
)

func NewRouter(analysisService services.AnalysisService, logger *utils.Logger, cfg *config.Config) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(mux.MiddlewareFunc(middleware.Recovery(logger)))
	r.Use(mux.MiddlewareFunc(middleware.RequestID()))
	r.Use(mux.MiddlewareFunc(middleware.Logger(logger)))
	r.Use(mux.MiddlewareFunc(middleware.CORS(cfg.AllowedOrigins)))

	analysisHandler := handlers.NewAnalysisHandler(analysisService, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", analysisHandler.Health).Methods(http.MethodGet)

	// Analysis is rate limited per client; health checks are not.
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	api.Handle("/analyze", middleware.RateLimit(limiter, logger)(http.HandlerFunc(analysisHandler.Analyze))).
		Methods(http.MethodPost, http.MethodOptions)

	return r
}
