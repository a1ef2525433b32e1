// Package httpapi exposes the statistics engine as the REST API behind the
// city lifestyle dashboard.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/CityLensHQ/citylens-cli/internal/stats"
)

// Server routes dashboard requests to a statistics engine.
type Server struct {
	engine *stats.Engine
	logger *zap.Logger
	mux    *http.ServeMux
}

// NewServer wires the engine to the dashboard routes.
func NewServer(engine *stats.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{engine: engine, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /api/overview", s.handleOverview)
	s.mux.HandleFunc("GET /api/cities/by-country", s.handleCitiesByCountry)
	s.mux.HandleFunc("GET /api/cities/top/{metric}", s.handleTopCities)
	s.mux.HandleFunc("GET /api/income/analysis", s.handleIncomeAnalysis)
	s.mux.HandleFunc("GET /api/geographic", s.handleGeographic)
	s.mux.HandleFunc("GET /api/correlations", s.handleCorrelations)
	s.mux.HandleFunc("GET /api/quality-of-life", s.handleQualityOfLife)
	s.mux.HandleFunc("GET /api/happiness/analysis", s.handleHappinessAnalysis)
	s.mux.HandleFunc("POST /api/city/comparison", s.handleCityComparison)
	s.mux.HandleFunc("GET /api/insights", s.handleInsights)
	s.mux.HandleFunc("GET /api/filters", s.handleFilters)
}

// Handler returns the full middleware chain around the route mux.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.loggingMiddleware(s.mux))
}

// Serve listens on addr until ctx is canceled, then drains in-flight
// requests before returning.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.Int("rows", s.engine.Rows()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// corsMiddleware answers preflights and lets any origin read the API, the
// posture the dashboard frontend expects.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
