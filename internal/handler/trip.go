package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/middleware"
	"github.com/spotterhq/hos-logbook/backend/internal/service"
)

type createTripRequest struct {
	Name            string   `json:"name"`
	CurrentLocation string   `json:"current_location"`
	PickupLocation  string   `json:"pickup_location"`
	DropoffLocation string   `json:"dropoff_location"`
	CurrentCycle    string   `json:"current_cycle"`
	TotalDistance   *float64 `json:"total_distance"`
}

type tripListResponse struct {
	Data  []domain.Trip `json:"data"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int64         `json:"total"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	trip, err := s.trips.Create(r.Context(), driverID, service.CreateTripRequest{
		Name:            req.Name,
		CurrentLocation: req.CurrentLocation,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		CurrentCycle:    req.CurrentCycle,
		TotalDistance:   req.TotalDistance,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// ListTrips handles GET /trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	params := paginationFromQuery(r)
	trips, total, err := s.trips.List(r.Context(), driverID, params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripListResponse{
		Data:  trips,
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	})
}

// CurrentTrip handles GET /trips/current.
func (s *Server) CurrentTrip(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	trip, err := s.trips.Current(r.Context(), driverID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	s.tripByID(w, r, s.trips.Get)
}

// StartTrip handles POST /trips/{id}/start.
func (s *Server) StartTrip(w http.ResponseWriter, r *http.Request) {
	s.tripByID(w, r, s.trips.Start)
}

// CompleteTrip handles POST /trips/{id}/complete.
func (s *Server) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	s.tripByID(w, r, s.trips.Complete)
}

// CancelTrip handles POST /trips/{id}/cancel.
func (s *Server) CancelTrip(w http.ResponseWriter, r *http.Request) {
	s.tripByID(w, r, s.trips.Cancel)
}

// tripByID factors the shared id-parse / call / respond shape of the
// single-trip endpoints.
func (s *Server) tripByID(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	tripID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		requestError(w, "invalid trip id")
		return
	}

	trip, err := op(r.Context(), driverID, tripID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}
