// Package service contains the business logic for the HOS Logbook API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/repo"
)

// validate is the shared validator instance. validator.New is expensive;
// the package-level singleton is the documented usage pattern.
var validate = validator.New()

// Geocoder resolves coordinates to an address. Failures must be degradable.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// DutyService maintains the single currently-open duty-status entry per
// driver and processes transitions between the four regulatory states.
type DutyService struct {
	entries  repo.EntryRepo
	drivers  repo.DriverRepo
	geocoder Geocoder
	reverts  *AutoRevert
	log      *slog.Logger

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewDutyService constructs a DutyService. geocoder may be nil when reverse
// geocoding is unavailable; location updates then store raw coordinates.
func NewDutyService(entries repo.EntryRepo, drivers repo.DriverRepo, geocoder Geocoder, reverts *AutoRevert, log *slog.Logger) *DutyService {
	return &DutyService{
		entries:  entries,
		drivers:  drivers,
		geocoder: geocoder,
		reverts:  reverts,
		log:      log,
		now:      time.Now,
	}
}

// ChangeStatusRequest carries a duty-status transition and its metadata.
// Location is always required; the remaining required fields depend on the
// target status and are enforced by variant validation before the atomic
// close/open operation.
type ChangeStatusRequest struct {
	Status domain.DutyStatus

	// At is an optional user-supplied transition time. Nil means "now".
	At *time.Time

	Location  string
	Latitude  *float64
	Longitude *float64
	Notes     string

	VehicleInfo   string
	TrailerInfo   string
	OdometerStart *float64 // starting reading for a new driving entry
	OdometerEnd   *float64 // ending reading stamped onto the closing entry

	// IsPickupDropoff marks an on_duty_not_driving transition as a
	// pickup/drop-off activity, arming the 1-hour auto-revert to driving.
	IsPickupDropoff bool
}

// Transition variants. The required fields differ by target status, so each
// target gets its own tagged struct and the discriminating switch lives in
// validateTransition. driving needs vehicle and odometer info; off_duty
// closing a driving period needs the ending odometer reading.
type drivingTransition struct {
	Location      string   `validate:"required"`
	VehicleInfo   string   `validate:"required"`
	OdometerStart *float64 `validate:"required"`
}

type offDutyTransition struct {
	Location       string   `validate:"required"`
	ClosingDriving bool     `validate:"-"`
	OdometerEnd    *float64 `validate:"required_if=ClosingDriving true"`
}

type defaultTransition struct {
	Location string `validate:"required"`
}

// validateTransition runs the variant validation for a transition request.
// closing is the entry being closed, or nil for a fresh journal.
func validateTransition(req ChangeStatusRequest, closing *domain.LogEntry) error {
	var err error
	switch req.Status {
	case domain.StatusDriving:
		err = validate.Struct(drivingTransition{
			Location:      req.Location,
			VehicleInfo:   req.VehicleInfo,
			OdometerStart: req.OdometerStart,
		})
	case domain.StatusOffDuty:
		err = validate.Struct(offDutyTransition{
			Location:       req.Location,
			ClosingDriving: closing != nil && closing.DutyStatus == domain.StatusDriving,
			OdometerEnd:    req.OdometerEnd,
		})
	case domain.StatusSleeperBerth, domain.StatusOnDutyNotDriving:
		err = validate.Struct(defaultTransition{Location: req.Location})
	default:
		return fmt.Errorf("%w: unknown duty status %q", domain.ErrValidation, req.Status)
	}
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is required for a %s transition",
				domain.ErrValidation, snakeField(verrs[0].Field()), req.Status)
		}
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.IsPickupDropoff && req.Status != domain.StatusOnDutyNotDriving {
		return fmt.Errorf("%w: is_pickup_dropoff only applies to on_duty_not_driving", domain.ErrValidation)
	}
	return nil
}

// ChangeStatus closes the driver's open entry and opens a new one in a single
// atomic operation. The closed entry's end time and the opened entry's start
// time are the same instant.
//
// Returns domain.ErrValidation when the target status equals the current one,
// when the transition time is in the future or before the open entry started,
// or when required metadata for the target status is missing.
// Returns domain.ErrConflict when a concurrent change wins the race.
func (s *DutyService) ChangeStatus(ctx context.Context, driverID uuid.UUID, req ChangeStatusRequest) (domain.LogEntry, error) {
	now := s.now()
	at := now
	if req.At != nil {
		at = *req.At
	}
	if at.After(now.Add(time.Minute)) {
		return domain.LogEntry{}, fmt.Errorf("%w: transition time must not be in the future", domain.ErrValidation)
	}

	var closing *domain.LogEntry
	open, err := s.entries.GetOpen(ctx, driverID)
	switch {
	case err == nil:
		if open.DutyStatus == req.Status {
			return domain.LogEntry{}, fmt.Errorf("%w: already in status %s", domain.ErrValidation, req.Status)
		}
		if !at.After(open.StartTime) {
			return domain.LogEntry{}, fmt.Errorf("%w: transition time must be after the current entry started", domain.ErrValidation)
		}
		closing = &open
	case errors.Is(err, domain.ErrNotFound):
		// Fresh journal — the first entry has nothing to close.
	default:
		return domain.LogEntry{}, fmt.Errorf("service.DutyService.ChangeStatus: %w", err)
	}

	if err := validateTransition(req, closing); err != nil {
		return domain.LogEntry{}, err
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.DutyService.ChangeStatus: %w", err)
	}

	next := domain.LogEntry{
		LogDate:         localDate(at, driver.Location()),
		DutyStatus:      req.Status,
		Location:        req.Location,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Notes:           req.Notes,
		VehicleInfo:     req.VehicleInfo,
		TrailerInfo:     req.TrailerInfo,
		OdometerStart:   req.OdometerStart,
		IsPickupDropoff: req.IsPickupDropoff && req.Status == domain.StatusOnDutyNotDriving,
	}

	closed, opened, err := s.entries.Transition(ctx, driverID, at, req.OdometerEnd, next)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.DutyService.ChangeStatus: %w", err)
	}

	// A manual change supersedes any armed pickup/drop-off timer.
	if closed != nil {
		s.reverts.Cancel(closed.ID)
	}
	if opened.IsPickupDropoff {
		s.reverts.Schedule(opened.ID, driverID)
	}

	return opened, nil
}

// RecordAutomatic applies a system-initiated status change (trip start/stop,
// pickup/drop-off auto-revert). It skips variant validation — automatic
// transitions carry whatever metadata the system has — but keeps the same
// atomic close/open semantics.
//
// A domain.ErrConflict from a driver already in the target status is
// swallowed: the system's goal state already holds.
func (s *DutyService) RecordAutomatic(ctx context.Context, driverID uuid.UUID, status domain.DutyStatus, location, notes string) (domain.LogEntry, error) {
	now := s.now()

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.DutyService.RecordAutomatic: %w", err)
	}

	if open, err := s.entries.GetOpen(ctx, driverID); err == nil && open.DutyStatus == status {
		return open, nil
	}

	next := domain.LogEntry{
		LogDate:    localDate(now, driver.Location()),
		DutyStatus: status,
		Location:   location,
		Notes:      notes,
	}

	closed, opened, err := s.entries.Transition(ctx, driverID, now, nil, next)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			if open, getErr := s.entries.GetOpen(ctx, driverID); getErr == nil && open.DutyStatus == status {
				return open, nil
			}
		}
		return domain.LogEntry{}, fmt.Errorf("service.DutyService.RecordAutomatic: %w", err)
	}
	if closed != nil {
		s.reverts.Cancel(closed.ID)
	}
	return opened, nil
}

// AutoRevertFire is the scheduler callback for the pickup/drop-off window.
// It re-validates against current state before acting, so a stale timer
// (driver already changed status, or a duplicate fire) is a no-op.
func (s *DutyService) AutoRevertFire(entryID, driverID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	open, err := s.entries.GetOpen(ctx, driverID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error("auto-revert: load open entry", "driver_id", driverID, "error", err)
		}
		return
	}
	if open.ID != entryID || open.DutyStatus != domain.StatusOnDutyNotDriving || !open.IsPickupDropoff {
		// Stale timer — the scheduled entry is no longer the open
		// pickup/drop-off entry.
		return
	}

	_, err = s.RecordAutomatic(ctx, driverID, domain.StatusDriving, open.Location,
		"Auto-switched from on_duty_not_driving after 1 hour - pickup/drop-off complete")
	if err != nil {
		s.log.Error("auto-revert: transition", "driver_id", driverID, "entry_id", entryID, "error", err)
		return
	}
	s.log.Info("auto-revert: pickup/drop-off entry reverted to driving",
		"driver_id", driverID, "entry_id", entryID)
}

// EditStartTime retroactively adjusts the start time of the currently open
// entry. Rejects zero, future, or out-of-order times with domain.ErrValidation.
func (s *DutyService) EditStartTime(ctx context.Context, driverID, entryID uuid.UUID, newStart time.Time) (domain.LogEntry, error) {
	if newStart.IsZero() {
		return domain.LogEntry{}, fmt.Errorf("%w: start time is required", domain.ErrValidation)
	}
	if newStart.After(s.now()) {
		return domain.LogEntry{}, fmt.Errorf("%w: start time must not be in the future", domain.ErrValidation)
	}

	entry, err := s.entries.GetByID(ctx, driverID, entryID)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.DutyService.EditStartTime: %w", err)
	}
	if !entry.Open() {
		return domain.LogEntry{}, fmt.Errorf("%w: only the open entry can be corrected", domain.ErrValidation)
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.DutyService.EditStartTime: %w", err)
	}

	entry.StartTime = newStart
	entry.LogDate = localDate(newStart, driver.Location())

	updated, err := s.entries.Update(ctx, entry)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.DutyService.EditStartTime: %w", err)
	}
	return updated, nil
}

// EditDuration retroactively sets how long the currently open entry has been
// running by moving its start time to now minus the given hours.
// Rejects non-finite, negative, or greater-than-24-hour values.
func (s *DutyService) EditDuration(ctx context.Context, driverID, entryID uuid.UUID, hours float64) (domain.LogEntry, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return domain.LogEntry{}, fmt.Errorf("%w: duration must be a finite number", domain.ErrValidation)
	}
	if hours < 0 || hours > 24 {
		return domain.LogEntry{}, fmt.Errorf("%w: duration must be between 0 and 24 hours", domain.ErrValidation)
	}

	newStart := s.now().Add(-time.Duration(hours * float64(time.Hour)))
	return s.EditStartTime(ctx, driverID, entryID, newStart)
}

// UpdateLocation attaches a periodic location report to the driver's open
// entry. Reverse geocoding is best-effort: on failure the raw coordinates
// become the location string and the write proceeds.
func (s *DutyService) UpdateLocation(ctx context.Context, driverID uuid.UUID, lat, lng float64) (domain.LogEntry, error) {
	entry, err := s.entries.GetOpen(ctx, driverID)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.DutyService.UpdateLocation: %w", err)
	}

	address := fmt.Sprintf("%.5f, %.5f", lat, lng)
	if s.geocoder != nil {
		if resolved, err := s.geocoder.Reverse(ctx, lat, lng); err == nil {
			address = resolved
		} else {
			s.log.Warn("location update: geocode failed, storing raw coordinates",
				"driver_id", driverID, "error", err)
		}
	}

	entry.Location = address
	entry.Latitude = &lat
	entry.Longitude = &lng

	updated, err := s.entries.Update(ctx, entry)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.DutyService.UpdateLocation: %w", err)
	}
	return updated, nil
}

// HOSStatus is the driver-facing snapshot of the current duty state and
// today's hour consumption against the regulatory limits.
type HOSStatus struct {
	CurrentStatus domain.DutyStatus `json:"current_status"`
	Since         *time.Time        `json:"since,omitempty"`
	Location      string            `json:"location,omitempty"`

	DrivingHoursToday float64 `json:"driving_hours_today"`
	OnDutyHoursToday  float64 `json:"on_duty_hours_today"`

	RemainingDrivingHours float64 `json:"remaining_driving_hours"`
	RemainingOnDutyHours  float64 `json:"remaining_on_duty_hours"`

	IsCompliantToday bool `json:"is_compliant_today"`
}

// CurrentStatus reports the driver's open entry and today's totals.
// A driver with no entries at all defaults to off_duty.
func (s *DutyService) CurrentStatus(ctx context.Context, driverID uuid.UUID) (HOSStatus, error) {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return HOSStatus{}, fmt.Errorf("service.DutyService.CurrentStatus: %w", err)
	}

	now := s.now()
	today := localDate(now, driver.Location())
	entries, err := s.entries.ListByDate(ctx, driverID, today)
	if err != nil {
		return HOSStatus{}, fmt.Errorf("service.DutyService.CurrentStatus: %w", err)
	}

	totals := aggregateDay(entries, dayWindow(today, driver.Location()), now)
	onDutyWindow := totals[domain.StatusDriving] + totals[domain.StatusOnDutyNotDriving]

	status := HOSStatus{
		CurrentStatus:         domain.StatusOffDuty,
		DrivingHoursToday:     totals[domain.StatusDriving],
		OnDutyHoursToday:      onDutyWindow,
		RemainingDrivingHours: math.Max(0, domain.MaxDrivingHours-totals[domain.StatusDriving]),
		RemainingOnDutyHours:  math.Max(0, domain.MaxOnDutyWindowHours-onDutyWindow),
	}
	status.IsCompliantToday = totals[domain.StatusDriving] <= domain.MaxDrivingHours &&
		onDutyWindow <= domain.MaxOnDutyWindowHours

	if open, err := s.entries.GetOpen(ctx, driverID); err == nil {
		since := open.StartTime
		status.CurrentStatus = open.DutyStatus
		status.Since = &since
		status.Location = open.Location
	} else if !errors.Is(err, domain.ErrNotFound) {
		return HOSStatus{}, fmt.Errorf("service.DutyService.CurrentStatus: %w", err)
	}

	return status, nil
}

// ListEntries returns one page of the driver's entries, optionally filtered
// to a single calendar date. Always returns a non-nil slice.
func (s *DutyService) ListEntries(ctx context.Context, driverID uuid.UUID, date *time.Time, p domain.PaginationParams) ([]domain.LogEntry, int64, error) {
	entries, total, err := s.entries.ListPaged(ctx, driverID, date, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.DutyService.ListEntries: %w", err)
	}
	if entries == nil {
		entries = []domain.LogEntry{}
	}
	return entries, total, nil
}

// localDate truncates t to its calendar date in loc, normalized to UTC
// midnight for the date column.
func localDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// snakeField converts a Go struct field name to the snake_case wire name
// used in validation messages (OdometerStart → odometer_start).
func snakeField(name string) string {
	out := make([]rune, 0, len(name)+4)
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}
