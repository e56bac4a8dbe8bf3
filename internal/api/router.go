package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/dmehra/niftyrank/internal/api/handlers"
	"github.com/dmehra/niftyrank/pkg/logger"
)

// NewRouter configures every HTTP route of the service. runs is nil
// when no database is configured; its routes are then not mounted.
func NewRouter(rankings *handlers.RankingHandler, runs *handlers.RunHandler, stream *Stream, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/rankings/latest", rankings.GetLatestRankings).Methods("GET")
	api.HandleFunc("/rankings/{month}", rankings.GetRankingsByMonth).Methods("GET")
	api.HandleFunc("/returns/{month}", rankings.GetReturnsByMonth).Methods("GET")
	api.HandleFunc("/deltas/latest", rankings.GetLatestDeltas).Methods("GET")
	api.HandleFunc("/deltas/{month}", rankings.GetDeltasByMonth).Methods("GET")
	api.HandleFunc("/status", rankings.GetStatus).Methods("GET")
	api.HandleFunc("/run", rankings.TriggerRun).Methods("POST")
	api.Handle("/stream", stream).Methods("GET")

	if runs != nil {
		api.HandleFunc("/runs/latest", runs.GetLatestRun).Methods("GET")
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(rateLimitMiddleware())

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "niftyrank-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware caps the request rate across all clients.
func rateLimitMiddleware() mux.MiddlewareFunc {
	limiter := rate.NewLimiter(rate.Limit(50), 100)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
