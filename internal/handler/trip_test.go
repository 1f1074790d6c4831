package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/service"
)

func TestCreateTrip(t *testing.T) {
	trips := &mockTripServicer{
		create: func(_ context.Context, driverID uuid.UUID, req service.CreateTripRequest) (domain.Trip, error) {
			assert.Equal(t, testDriverID, driverID)
			assert.Equal(t, "Dallas, TX", req.PickupLocation)
			return domain.Trip{
				ID:       uuid.New(),
				DriverID: driverID,
				Name:     "Dallas run",
				Status:   domain.TripPlanning,
			}, nil
		},
	}
	ts := newTestServer(nil, nil, nil, nil, trips, nil)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/trips", map[string]any{
		"name":             "Dallas run",
		"current_location": "Oklahoma City, OK",
		"pickup_location":  "Dallas, TX",
		"dropoff_location": "Atlanta, GA",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var trip domain.Trip
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trip))
	assert.Equal(t, domain.TripPlanning, trip.Status)
}

func TestStartTrip_ConflictWhenActive(t *testing.T) {
	trips := &mockTripServicer{
		start: func(context.Context, uuid.UUID, uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w: trip already started", domain.ErrConflict)
		},
	}
	ts := newTestServer(nil, nil, nil, nil, trips, nil)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/trips/"+uuid.NewString()+"/start", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	envelope := decodeError(t, resp)
	assert.Equal(t, "conflict", envelope.Error.Code)
	assert.Equal(t, "trip already started", envelope.Error.Message)
}

func TestGetTrip_NotFound(t *testing.T) {
	trips := &mockTripServicer{
		get: func(context.Context, uuid.UUID, uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
		},
	}
	ts := newTestServer(nil, nil, nil, nil, trips, nil)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/trips/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetTrip_BadID(t *testing.T) {
	ts := newTestServer(nil, nil, nil, nil, &mockTripServicer{}, nil)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/trips/not-a-uuid", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCompleteTrip(t *testing.T) {
	tripID := uuid.New()
	trips := &mockTripServicer{
		complete: func(_ context.Context, _, id uuid.UUID) (domain.Trip, error) {
			assert.Equal(t, tripID, id)
			return domain.Trip{ID: id, Status: domain.TripCompleted}, nil
		},
	}
	ts := newTestServer(nil, nil, nil, nil, trips, nil)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/trips/"+tripID.String()+"/complete", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var trip domain.Trip
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trip))
	assert.Equal(t, domain.TripCompleted, trip.Status)
}

func TestCurrentTrip_NoneActive(t *testing.T) {
	trips := &mockTripServicer{
		current: func(context.Context, uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetActive: %w", domain.ErrNotFound)
		},
	}
	ts := newTestServer(nil, nil, nil, nil, trips, nil)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/trips/current", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTrips(t *testing.T) {
	trips := &mockTripServicer{
		list: func(_ context.Context, _ uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
			return []domain.Trip{{ID: uuid.New()}}, 1, nil
		},
	}
	ts := newTestServer(nil, nil, nil, nil, trips, nil)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/trips", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Data  []domain.Trip `json:"data"`
		Total int64         `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Len(t, page.Data, 1)
	assert.EqualValues(t, 1, page.Total)
}
