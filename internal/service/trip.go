package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/repo"
)

// statusRecorder is the slice of DutyService that trips need: applying
// system-initiated duty changes when a trip starts or completes.
type statusRecorder interface {
	RecordAutomatic(ctx context.Context, driverID uuid.UUID, status domain.DutyStatus, location, notes string) (domain.LogEntry, error)
}

// TripService manages the trip lifecycle: planning → active → completed,
// with cancellation from either non-terminal state.
type TripService struct {
	trips   repo.TripRepo
	drivers repo.DriverRepo
	duty    statusRecorder

	now func() time.Time
}

// NewTripService constructs a TripService.
func NewTripService(trips repo.TripRepo, drivers repo.DriverRepo, duty statusRecorder) *TripService {
	return &TripService{
		trips:   trips,
		drivers: drivers,
		duty:    duty,
		now:     time.Now,
	}
}

// CreateTripRequest carries the planning details for a new trip.
type CreateTripRequest struct {
	Name            string
	CurrentLocation string
	PickupLocation  string
	DropoffLocation string
	CurrentCycle    string
	TotalDistance   *float64
}

// Create records a new trip in planning status. The cycle defaults to the
// driver's profile cycle when omitted.
func (s *TripService) Create(ctx context.Context, driverID uuid.UUID, req CreateTripRequest) (domain.Trip, error) {
	cycle := domain.Cycle(req.CurrentCycle)
	if req.CurrentCycle == "" {
		driver, err := s.drivers.GetByID(ctx, driverID)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
		}
		cycle = driver.DefaultCycle
	} else if _, err := domain.ParseCycle(req.CurrentCycle); err != nil {
		return domain.Trip{}, err
	}

	name := req.Name
	if name == "" {
		name = "Trip - " + s.now().Format("2006-01-02")
	}

	trip, err := s.trips.Create(ctx, domain.Trip{
		DriverID:        driverID,
		Name:            name,
		CurrentLocation: req.CurrentLocation,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		CurrentCycle:    cycle,
		Status:          domain.TripPlanning,
		TotalDistance:   req.TotalDistance,
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return trip, nil
}

// Start activates a planned trip and records an automatic switch to driving.
// Starting a trip that is already active returns domain.ErrConflict; a
// completed or cancelled trip cannot be started.
func (s *TripService) Start(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, driverID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", err)
	}
	switch trip.Status {
	case domain.TripPlanning:
	case domain.TripActive:
		return domain.Trip{}, fmt.Errorf("%w: trip already started", domain.ErrConflict)
	default:
		return domain.Trip{}, fmt.Errorf("%w: cannot start a %s trip", domain.ErrValidation, trip.Status)
	}

	start := s.now()
	trip.Status = domain.TripActive
	trip.StartTime = &start

	updated, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", err)
	}

	location := trip.PickupLocation
	if location == "" {
		location = trip.CurrentLocation
	}
	if _, err := s.duty.RecordAutomatic(ctx, driverID, domain.StatusDriving, location,
		"Trip started: "+trip.Name); err != nil && !errors.Is(err, domain.ErrConflict) {
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", err)
	}
	return updated, nil
}

// Complete finishes an active trip and records an automatic switch to
// off_duty. Completing a trip twice returns domain.ErrConflict.
func (s *TripService) Complete(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, driverID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Complete: %w", err)
	}
	switch trip.Status {
	case domain.TripActive:
	case domain.TripCompleted:
		return domain.Trip{}, fmt.Errorf("%w: trip already completed", domain.ErrConflict)
	default:
		return domain.Trip{}, fmt.Errorf("%w: cannot complete a %s trip", domain.ErrValidation, trip.Status)
	}

	end := s.now()
	trip.Status = domain.TripCompleted
	trip.EndTime = &end

	updated, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Complete: %w", err)
	}

	location := trip.DropoffLocation
	if location == "" {
		location = trip.CurrentLocation
	}
	if _, err := s.duty.RecordAutomatic(ctx, driverID, domain.StatusOffDuty, location,
		"Trip completed: "+trip.Name); err != nil && !errors.Is(err, domain.ErrConflict) {
		return domain.Trip{}, fmt.Errorf("service.TripService.Complete: %w", err)
	}
	return updated, nil
}

// Cancel abandons a planned or active trip. Terminal trips cannot be
// cancelled. Cancellation records no duty change; the driver's journal keeps
// whatever state it is in.
func (s *TripService) Cancel(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, driverID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Cancel: %w", err)
	}
	switch trip.Status {
	case domain.TripPlanning, domain.TripActive:
	default:
		return domain.Trip{}, fmt.Errorf("%w: cannot cancel a %s trip", domain.ErrValidation, trip.Status)
	}

	trip.Status = domain.TripCancelled
	updated, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Cancel: %w", err)
	}
	return updated, nil
}

// Current returns the driver's active trip, or domain.ErrNotFound when none
// is in progress.
func (s *TripService) Current(ctx context.Context, driverID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetActive(ctx, driverID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Current: %w", err)
	}
	return trip, nil
}

// Get returns one trip by id.
func (s *TripService) Get(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, driverID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return trip, nil
}

// List returns one page of the driver's trips, newest first.
// Always returns a non-nil slice.
func (s *TripService) List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.List(ctx, driverID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}
