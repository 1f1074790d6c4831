package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/repo"
)

// startTimeTolerance is the allowed gap between a closed entry's end and the
// next entry's start for the two to still count as contiguous when measuring
// consecutive rest. Transitions write both timestamps from the same instant,
// so anything larger means the journal has a genuine hole.
const startTimeTolerance = time.Minute

// CheckViolations evaluates one day's aggregate and entries against the HOS
// limits and returns the violations in a fixed order: driving limit, on-duty
// window, insufficient rest. prevDay supplies the entries of the preceding
// date so a rest period spanning midnight is measured in full.
//
// The checker is pure: it reads its arguments and produces values, nothing
// else, which keeps the rule set trivially testable.
func CheckViolations(log domain.DailyLog, entries, prevDay []domain.LogEntry, now time.Time) []domain.Violation {
	var out []domain.Violation

	if log.TotalDrivingHours > domain.MaxDrivingHours {
		out = append(out, domain.Violation{
			Type:     domain.ViolationDrivingLimit,
			Severity: domain.SeverityCritical,
			Description: fmt.Sprintf("Driving time of %.2f hours exceeds the %.0f-hour daily limit",
				log.TotalDrivingHours, domain.MaxDrivingHours),
			Timestamp: now,
		})
	}

	onDutyWindow := log.TotalDrivingHours + log.TotalOnDutyHours
	if onDutyWindow > domain.MaxOnDutyWindowHours {
		out = append(out, domain.Violation{
			Type:     domain.ViolationOnDutyWindow,
			Severity: domain.SeverityCritical,
			Description: fmt.Sprintf("On-duty time of %.2f hours exceeds the %.0f-hour window",
				onDutyWindow, domain.MaxOnDutyWindowHours),
			Timestamp: now,
		})
	}

	if v, ok := checkRestBeforeDriving(entries, prevDay, now); ok {
		out = append(out, v)
	}
	return out
}

// checkRestBeforeDriving measures the consecutive off_duty/sleeper_berth
// hours immediately preceding the day's first driving entry. Days with no
// driving need no rest check. A gap in the journal breaks the rest chain.
func checkRestBeforeDriving(entries, prevDay []domain.LogEntry, now time.Time) (domain.Violation, bool) {
	var firstDriving *domain.LogEntry
	for i := range entries {
		if entries[i].DutyStatus == domain.StatusDriving {
			firstDriving = &entries[i]
			break
		}
	}
	if firstDriving == nil {
		return domain.Violation{}, false
	}

	timeline := make([]domain.LogEntry, 0, len(prevDay)+len(entries))
	timeline = append(timeline, prevDay...)
	timeline = append(timeline, entries...)
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].StartTime.Before(timeline[j].StartTime)
	})

	rest := 0.0
	cursor := firstDriving.StartTime
	for i := len(timeline) - 1; i >= 0; i-- {
		e := timeline[i]
		if !e.StartTime.Before(firstDriving.StartTime) {
			continue
		}
		if e.EndTime == nil {
			continue
		}
		gap := cursor.Sub(*e.EndTime)
		if gap < 0 || gap > startTimeTolerance {
			break
		}
		if !e.DutyStatus.IsRest() {
			break
		}
		rest += e.EndTime.Sub(e.StartTime).Hours()
		cursor = e.StartTime
	}

	if rest >= domain.MinConsecutiveRestHours {
		return domain.Violation{}, false
	}
	return domain.Violation{
		Type:     domain.ViolationInsufficientRest,
		Severity: domain.SeverityMajor,
		Description: fmt.Sprintf("Only %.2f consecutive rest hours before driving; %.0f required",
			rest, domain.MinConsecutiveRestHours),
		Timestamp: now,
	}, true
}

// ViolationService produces violation reports across a date range.
type ViolationService struct {
	entries repo.EntryRepo
	drivers repo.DriverRepo

	now func() time.Time
}

// NewViolationService constructs a ViolationService.
func NewViolationService(entries repo.EntryRepo, drivers repo.DriverRepo) *ViolationService {
	return &ViolationService{
		entries: entries,
		drivers: drivers,
		now:     time.Now,
	}
}

// Report evaluates the driver's last `days` calendar dates (including today)
// and returns every violation found, oldest date first. days is clamped to
// [1, 30]. Totals are computed from the raw entries, so an uncertified or
// never-generated daily log still gets checked.
func (s *ViolationService) Report(ctx context.Context, driverID uuid.UUID, days int) ([]domain.Violation, error) {
	if days < 1 {
		days = 1
	}
	if days > 30 {
		days = 30
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("service.ViolationService.Report: %w", err)
	}

	now := s.now()
	loc := driver.Location()
	today := localDate(now, loc)
	from := today.AddDate(0, 0, -(days - 1))

	// One extra day back so midnight-spanning rest is measured in full.
	entries, err := s.entries.ListRange(ctx, driverID, from.AddDate(0, 0, -1), today)
	if err != nil {
		return nil, fmt.Errorf("service.ViolationService.Report: %w", err)
	}

	byDate := make(map[time.Time][]domain.LogEntry)
	for _, e := range entries {
		byDate[e.LogDate] = append(byDate[e.LogDate], e)
	}

	violations := []domain.Violation{}
	for date := from; !date.After(today); date = date.AddDate(0, 0, 1) {
		dayEntries := byDate[date]
		if len(dayEntries) == 0 {
			continue
		}
		totals := aggregateDay(dayEntries, dayWindow(date, loc), now)
		agg := domain.DailyLog{
			DriverID:               driverID,
			LogDate:                date,
			TotalOffDutyHours:      totals[domain.StatusOffDuty],
			TotalSleeperBerthHours: totals[domain.StatusSleeperBerth],
			TotalDrivingHours:      totals[domain.StatusDriving],
			TotalOnDutyHours:       totals[domain.StatusOnDutyNotDriving],
		}
		violations = append(violations,
			CheckViolations(agg, dayEntries, byDate[date.AddDate(0, 0, -1)], date)...)
	}
	return violations, nil
}
