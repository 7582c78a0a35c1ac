package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/polarclim/analysis_launcher/endpoints/health"
	"github.com/polarclim/analysis_launcher/log"
)

// HTTPServer wraps an HTTP listener serving JSON metrics and health.
type HTTPServer struct {
	addr           string
	metrics        Manager
	healthRegister *health.HealthServiceRegister
	server         *http.Server
}

// NewHTTPServer creates a new server instance.
func NewHTTPServer(addr string, metrics Manager, healthRegister *health.HealthServiceRegister) *HTTPServer {
	return &HTTPServer{
		addr:           addr,
		metrics:        metrics,
		healthRegister: healthRegister,
	}
}

// Run starts the server and shuts down gracefully when ctx is canceled.
func (s *HTTPServer) Run(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(s.metrics.AggregateJSON())
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if s.healthRegister.OverallStatus() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"healthy"}`))
			return
		}

		healthStatus := s.healthRegister.CheckAll()
		w.WriteHeader(http.StatusServiceUnavailable)
		encoder := json.NewEncoder(w)
		if err := encoder.Encode(healthStatus); err != nil {
			log.Logger.WithError(err).Error("Failed to encode health status")
		}
	})

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	go func() {
		log.Logger.Infof("Serving metrics at http://%s/metrics", s.addr)
		log.Logger.Infof("Serving health at http://%s/health", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Logger.WithError(err).Error("HTTP server error")
		}
	}()

	<-ctx.Done()
	log.Logger.Infof("Shutting down metrics server at %s...", s.addr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		log.Logger.WithError(err).Error("HTTP server shutdown error")
	}
}
