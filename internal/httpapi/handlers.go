package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/CityLensHQ/citylens-cli/internal/dataset"
	"github.com/CityLensHQ/citylens-cli/internal/stats"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "City Lifestyle Dashboard API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"overview":           "/api/overview",
			"cities_by_country":  "/api/cities/by-country",
			"top_cities":         "/api/cities/top/{metric}",
			"income_analysis":    "/api/income/analysis",
			"geographic":         "/api/geographic",
			"correlations":       "/api/correlations",
			"quality_of_life":    "/api/quality-of-life",
			"happiness_analysis": "/api/happiness/analysis",
			"city_comparison":    "/api/city/comparison",
			"insights":           "/api/insights",
			"filters":            "/api/filters",
		},
	})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.respond(w, func() (any, error) { return s.engine.Overview() })
}

func (s *Server) handleCitiesByCountry(w http.ResponseWriter, r *http.Request) {
	s.respond(w, func() (any, error) { return s.engine.CitiesByCountry() })
}

func (s *Server) handleTopCities(w http.ResponseWriter, r *http.Request) {
	topN := stats.DefaultTopN
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, &stats.InputError{Msg: fmt.Sprintf("top_n must be an integer, got %q", raw)})
			return
		}
		topN = n
	}
	metric := r.PathValue("metric")
	s.respond(w, func() (any, error) { return s.engine.TopCities(metric, topN) })
}

func (s *Server) handleIncomeAnalysis(w http.ResponseWriter, r *http.Request) {
	s.respond(w, func() (any, error) { return s.engine.IncomeAnalysis() })
}

func (s *Server) handleGeographic(w http.ResponseWriter, r *http.Request) {
	s.respond(w, func() (any, error) { return s.engine.GeographicData() })
}

func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	s.respond(w, func() (any, error) { return s.engine.Correlations() })
}

func (s *Server) handleQualityOfLife(w http.ResponseWriter, r *http.Request) {
	s.respond(w, func() (any, error) { return s.engine.QualityOfLife() })
}

func (s *Server) handleHappinessAnalysis(w http.ResponseWriter, r *http.Request) {
	s.respond(w, func() (any, error) { return s.engine.HappinessAnalysis() })
}

func (s *Server) handleCityComparison(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Cities []string `json:"cities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, &stats.InputError{Msg: "request body must be JSON like {\"cities\": [...]}"})
		return
	}
	s.respond(w, func() (any, error) { return s.engine.CityComparison(body.Cities) })
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	s.respond(w, func() (any, error) { return s.engine.Insights() })
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	s.respond(w, func() (any, error) { return s.engine.FilterOptions() })
}

// respond runs one query and writes either its payload or its mapped error.
func (s *Server) respond(w http.ResponseWriter, query func() (any, error)) {
	payload, err := query()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses: caller input
// problems are 400, a missing dataset is 404, everything else (schema
// faults included) is 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var inputErr *stats.InputError
	var notFound *dataset.NotFoundError
	switch {
	case errors.As(err, &inputErr):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
