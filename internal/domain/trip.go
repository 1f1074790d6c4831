package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cycle is a regulatory multi-day hour-limit window.
type Cycle string

const (
	Cycle70Hours8Days Cycle = "70_8"
	Cycle60Hours7Days Cycle = "60_7"
)

// ParseCycle validates a wire string as a Cycle.
func ParseCycle(s string) (Cycle, error) {
	switch Cycle(s) {
	case Cycle70Hours8Days, Cycle60Hours7Days:
		return Cycle(s), nil
	}
	return "", fmt.Errorf("%w: unknown cycle %q", ErrValidation, s)
}

// MaxHours returns the cycle's total on-duty hour budget.
func (c Cycle) MaxHours() float64 {
	if c == Cycle60Hours7Days {
		return 60
	}
	return 70
}

// TripStatus is the trip lifecycle state.
// planning → active → completed | cancelled; both end states are terminal.
type TripStatus string

const (
	TripPlanning  TripStatus = "planning"
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

// Trip is a planned or running haul. Starting a trip implicitly switches the
// driver to driving; completing it switches to off_duty.
type Trip struct {
	ID       uuid.UUID `json:"id"`
	DriverID uuid.UUID `json:"driver_id"`
	Name     string    `json:"name"`

	CurrentLocation string `json:"current_location,omitempty"`
	PickupLocation  string `json:"pickup_location,omitempty"`
	DropoffLocation string `json:"dropoff_location,omitempty"`

	CurrentCycle Cycle      `json:"current_cycle"`
	Status       TripStatus `json:"status"`

	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// TotalDistance is the planned distance in miles, when known.
	TotalDistance *float64 `json:"total_distance,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EstimatedDurationHours estimates drive time assuming a 60 mph average.
// Returns 0 when the distance is unknown.
func (t Trip) EstimatedDurationHours() float64 {
	if t.TotalDistance == nil {
		return 0
	}
	return *t.TotalDistance / 60
}
