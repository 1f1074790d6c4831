package domain

import (
	"time"

	"github.com/google/uuid"
)

// DailyLog is the certifiable per-day summary of a driver's duty-status
// hours. Totals are derived from the day's LogEntry rows; regeneration is
// idempotent and replaces prior totals until the log is certified, after
// which the record is fixed.
type DailyLog struct {
	ID       uuid.UUID `json:"id"`
	DriverID uuid.UUID `json:"driver_id"`
	LogDate  time.Time `json:"log_date"`

	TotalOffDutyHours      float64 `json:"total_off_duty_hours"`
	TotalSleeperBerthHours float64 `json:"total_sleeper_berth_hours"`
	TotalDrivingHours      float64 `json:"total_driving_hours"`
	TotalOnDutyHours       float64 `json:"total_on_duty_hours"`

	IsCertified bool       `json:"is_certified"`
	CertifiedAt *time.Time `json:"certified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalHours is the sum of all four category totals.
// The invariant TotalHours() <= 24 holds for any generated log.
func (d DailyLog) TotalHours() float64 {
	return d.TotalOffDutyHours + d.TotalSleeperBerthHours + d.TotalDrivingHours + d.TotalOnDutyHours
}

// HoursFor returns the total for a single status category.
func (d DailyLog) HoursFor(s DutyStatus) float64 {
	switch s {
	case StatusOffDuty:
		return d.TotalOffDutyHours
	case StatusSleeperBerth:
		return d.TotalSleeperBerthHours
	case StatusDriving:
		return d.TotalDrivingHours
	case StatusOnDutyNotDriving:
		return d.TotalOnDutyHours
	}
	return 0
}
