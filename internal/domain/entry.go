package domain

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is one contiguous span of time a driver spent in a single duty
// status. EndTime is nil while the entry is open — the open entry is the
// driver's current status, and at most one open entry exists per driver at
// any time (enforced by a partial unique index in Postgres).
//
// TotalHours is derived when the entry is closed and never set by clients.
type LogEntry struct {
	ID        uuid.UUID  `json:"id"`
	DriverID  uuid.UUID  `json:"driver_id"`
	LogDate   time.Time  `json:"log_date"` // calendar date in the driver's timezone
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	DutyStatus DutyStatus `json:"duty_status"`

	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Notes     string   `json:"notes,omitempty"`

	VehicleInfo   string   `json:"vehicle_info,omitempty"`
	TrailerInfo   string   `json:"trailer_info,omitempty"`
	OdometerStart *float64 `json:"odometer_start,omitempty"`
	OdometerEnd   *float64 `json:"odometer_end,omitempty"`

	TotalHours float64 `json:"total_hours"`

	// IsPickupDropoff marks an on_duty_not_driving entry that represents a
	// pickup/drop-off activity. Such entries auto-revert to driving after
	// PickupDropoffWindow if the driver takes no action.
	IsPickupDropoff bool `json:"is_pickup_dropoff,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open reports whether the entry is still accumulating time.
func (e LogEntry) Open() bool { return e.EndTime == nil }

// ElapsedHours returns the hours this entry covers: TotalHours for a closed
// entry, or time elapsed since StartTime for an open one.
func (e LogEntry) ElapsedHours(now time.Time) float64 {
	if e.EndTime != nil {
		return e.TotalHours
	}
	if now.Before(e.StartTime) {
		return 0
	}
	return now.Sub(e.StartTime).Hours()
}
