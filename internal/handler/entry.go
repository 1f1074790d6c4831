package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/middleware"
	"github.com/spotterhq/hos-logbook/backend/internal/service"
)

type changeStatusRequest struct {
	DutyStatus      string     `json:"duty_status"`
	At              *time.Time `json:"at"`
	Location        string     `json:"location"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	Notes           string     `json:"notes"`
	VehicleInfo     string     `json:"vehicle_info"`
	TrailerInfo     string     `json:"trailer_info"`
	OdometerStart   *float64   `json:"odometer_start"`
	OdometerEnd     *float64   `json:"odometer_end"`
	IsPickupDropoff bool       `json:"is_pickup_dropoff"`
}

type correctEntryRequest struct {
	StartTime     *time.Time `json:"start_time"`
	DurationHours *float64   `json:"duration_hours"`
}

type locationUpdateRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type entryListResponse struct {
	Data  []domain.LogEntry `json:"data"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

// ChangeStatus handles POST /logs/entries: the atomic duty-status change.
func (s *Server) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	status, err := domain.ParseDutyStatus(req.DutyStatus)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	entry, err := s.duty.ChangeStatus(r.Context(), driverID, service.ChangeStatusRequest{
		Status:          status,
		At:              req.At,
		Location:        req.Location,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Notes:           req.Notes,
		VehicleInfo:     req.VehicleInfo,
		TrailerInfo:     req.TrailerInfo,
		OdometerStart:   req.OdometerStart,
		OdometerEnd:     req.OdometerEnd,
		IsPickupDropoff: req.IsPickupDropoff,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// CorrectEntry handles PUT /logs/entries/{id}: retroactive start-time or
// duration correction of the open entry. Exactly one of start_time and
// duration_hours must be supplied.
func (s *Server) CorrectEntry(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		requestError(w, "invalid entry id")
		return
	}

	var req correctEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	var entry domain.LogEntry
	switch {
	case req.StartTime != nil && req.DurationHours != nil:
		requestError(w, "supply either start_time or duration_hours, not both")
		return
	case req.StartTime != nil:
		entry, err = s.duty.EditStartTime(r.Context(), driverID, entryID, *req.StartTime)
	case req.DurationHours != nil:
		entry, err = s.duty.EditDuration(r.Context(), driverID, entryID, *req.DurationHours)
	default:
		requestError(w, "start_time or duration_hours is required")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// UpdateLocation handles POST /logs/location: the periodic best-effort
// location report. A failed write after a successful lookup is logged and
// answered 204 anyway; the next interval retries.
func (s *Server) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var req locationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		requestError(w, "latitude and longitude are required")
		return
	}

	if _, err := s.duty.UpdateLocation(r.Context(), driverID, *req.Latitude, *req.Longitude); err != nil {
		s.log.Warn("location update failed", "driver_id", driverID, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// CurrentStatus handles GET /logs/status.
func (s *Server) CurrentStatus(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	status, err := s.duty.CurrentStatus(r.Context(), driverID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ListEntries handles GET /logs/entries with ?date=, ?page=, ?limit=.
func (s *Server) ListEntries(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			requestError(w, "date must be YYYY-MM-DD")
			return
		}
		date = &parsed
	}

	params := paginationFromQuery(r)
	entries, total, err := s.duty.ListEntries(r.Context(), driverID, date, params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entryListResponse{
		Data:  entries,
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	})
}

// paginationFromQuery reads ?page= and ?limit= with the shared defaults.
func paginationFromQuery(r *http.Request) domain.PaginationParams {
	var page, limit *int
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page = &v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = &v
		}
	}
	return domain.NewPaginationParams(page, limit)
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error: ErrorDetail{Code: "unauthorized", Message: "missing driver identity"},
	})
}
