package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/repo"
)

// DailyLogService aggregates duty-status entries into per-date daily logs
// and handles certification.
type DailyLogService struct {
	entries repo.EntryRepo
	logs    repo.DailyLogRepo
	drivers repo.DriverRepo

	now func() time.Time
}

// NewDailyLogService constructs a DailyLogService.
func NewDailyLogService(entries repo.EntryRepo, logs repo.DailyLogRepo, drivers repo.DriverRepo) *DailyLogService {
	return &DailyLogService{
		entries: entries,
		logs:    logs,
		drivers: drivers,
		now:     time.Now,
	}
}

// Generate computes the per-status totals for one calendar date from the
// driver's entries and upserts the daily log. Regeneration replaces the
// stored totals; an already-certified log is left untouched and returned
// as-is. Generate is idempotent over unchanged entries.
func (s *DailyLogService) Generate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.DailyLog, error) {
	existing, err := s.logs.GetByDate(ctx, driverID, date)
	switch {
	case err == nil:
		if existing.IsCertified {
			return existing, nil
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.DailyLog{}, fmt.Errorf("service.DailyLogService.Generate: %w", err)
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return domain.DailyLog{}, fmt.Errorf("service.DailyLogService.Generate: %w", err)
	}

	entries, err := s.entries.ListByDate(ctx, driverID, date)
	if err != nil {
		return domain.DailyLog{}, fmt.Errorf("service.DailyLogService.Generate: %w", err)
	}

	totals := aggregateDay(entries, dayWindow(date, driver.Location()), s.now())

	log, err := s.logs.Upsert(ctx, domain.DailyLog{
		DriverID:               driverID,
		LogDate:                date,
		TotalOffDutyHours:      totals[domain.StatusOffDuty],
		TotalSleeperBerthHours: totals[domain.StatusSleeperBerth],
		TotalDrivingHours:      totals[domain.StatusDriving],
		TotalOnDutyHours:       totals[domain.StatusOnDutyNotDriving],
	})
	if err != nil {
		return domain.DailyLog{}, fmt.Errorf("service.DailyLogService.Generate: %w", err)
	}
	return log, nil
}

// Certify marks a daily log as certified by the driver. Certification is
// one-way: a second attempt returns domain.ErrAlreadyCertified and leaves
// the original certification timestamp intact.
func (s *DailyLogService) Certify(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error) {
	log, err := s.logs.Certify(ctx, driverID, logID, s.now())
	if err != nil {
		return domain.DailyLog{}, fmt.Errorf("service.DailyLogService.Certify: %w", err)
	}
	return log, nil
}

// Get returns one daily log by id.
func (s *DailyLogService) Get(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error) {
	log, err := s.logs.GetByID(ctx, driverID, logID)
	if err != nil {
		return domain.DailyLog{}, fmt.Errorf("service.DailyLogService.Get: %w", err)
	}
	return log, nil
}

// List returns one page of the driver's daily logs, newest first.
// Always returns a non-nil slice.
func (s *DailyLogService) List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.DailyLog, int64, error) {
	logs, total, err := s.logs.ListPaged(ctx, driverID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.DailyLogService.List: %w", err)
	}
	if logs == nil {
		logs = []domain.DailyLog{}
	}
	return logs, total, nil
}

// dayWindow returns the [start, end) instants of the calendar date in loc.
// date is a UTC-midnight date value as stored in the date columns.
func dayWindow(date time.Time, loc *time.Location) [2]time.Time {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return [2]time.Time{start, start.Add(24 * time.Hour)}
}

// aggregateDay sums hours per duty status from the overlap of each entry with
// the day window. Open entries count up to now, clamped to the window end.
// Summing overlaps rather than stored total_hours keeps the per-day sum at or
// under 24 even when an entry spans midnight.
func aggregateDay(entries []domain.LogEntry, window [2]time.Time, now time.Time) map[domain.DutyStatus]float64 {
	totals := make(map[domain.DutyStatus]float64, len(domain.DutyStatuses))
	for _, status := range domain.DutyStatuses {
		totals[status] = 0
	}

	for _, e := range entries {
		end := now
		if e.EndTime != nil {
			end = *e.EndTime
		}
		if end.After(window[1]) {
			end = window[1]
		}
		start := e.StartTime
		if start.Before(window[0]) {
			start = window[0]
		}
		if !end.After(start) {
			continue
		}
		totals[e.DutyStatus] = roundHours(totals[e.DutyStatus] + end.Sub(start).Hours())
	}
	return totals
}

// roundHours rounds to two decimal places, the precision a paper log carries.
func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
