package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/middleware"
)

type dailyLogListResponse struct {
	Data  []domain.DailyLog `json:"data"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

type violationsResponse struct {
	Days       int                `json:"days"`
	Violations []domain.Violation `json:"violations"`
}

// ListDailyLogs handles GET /logs/daily.
func (s *Server) ListDailyLogs(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	params := paginationFromQuery(r)
	logs, total, err := s.daily.List(r.Context(), driverID, params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyLogListResponse{
		Data:  logs,
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	})
}

// GetDailyLog handles GET /logs/daily/{id}.
func (s *Server) GetDailyLog(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	logID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		requestError(w, "invalid daily log id")
		return
	}

	log, err := s.daily.Get(r.Context(), driverID, logID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// GenerateDailyLog handles POST /logs/daily/generate/{date}.
// Regeneration replaces totals; a certified log is returned unchanged.
func (s *Server) GenerateDailyLog(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		requestError(w, "date must be YYYY-MM-DD")
		return
	}

	log, err := s.daily.Generate(r.Context(), driverID, date)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// CertifyDailyLog handles POST /logs/daily/{id}/certify.
func (s *Server) CertifyDailyLog(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	logID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		requestError(w, "invalid daily log id")
		return
	}

	log, err := s.daily.Certify(r.Context(), driverID, logID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// Violations handles GET /logs/violations?days=N (default 7).
func (s *Server) Violations(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			requestError(w, "days must be a positive integer")
			return
		}
		days = v
	}

	violations, err := s.violations.Report(r.Context(), driverID, days)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, violationsResponse{Days: days, Violations: violations})
}
