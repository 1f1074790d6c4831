package domain

import (
	"time"

	"github.com/google/uuid"
)

// Driver is an authenticated user of the logbook. PasswordHash is a bcrypt
// hash and is never serialized.
type Driver struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`

	LicenseNumber string `json:"license_number,omitempty"`
	Company       string `json:"company,omitempty"`

	// Timezone is the IANA zone used to resolve "today" for this driver's
	// daily logs. Defaults to America/New_York.
	Timezone string `json:"timezone"`

	// DefaultCycle seeds new trips.
	DefaultCycle Cycle `json:"default_cycle"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location returns the driver's *time.Location, falling back to UTC when the
// stored zone name does not resolve.
func (d Driver) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
