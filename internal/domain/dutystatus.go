// Package domain contains the core data types for the HOS Logbook API.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import "fmt"

// DutyStatus is one of the four regulatory driver states tracked on a log.
type DutyStatus string

const (
	StatusOffDuty          DutyStatus = "off_duty"
	StatusSleeperBerth     DutyStatus = "sleeper_berth"
	StatusDriving          DutyStatus = "driving"
	StatusOnDutyNotDriving DutyStatus = "on_duty_not_driving"
)

// DutyStatuses lists every valid status in grid order (the order rows appear
// on a paper log sheet).
var DutyStatuses = []DutyStatus{
	StatusOffDuty,
	StatusSleeperBerth,
	StatusDriving,
	StatusOnDutyNotDriving,
}

// ParseDutyStatus converts a wire string into a DutyStatus.
// Returns ErrValidation for anything outside the four enumerated values.
func ParseDutyStatus(s string) (DutyStatus, error) {
	switch DutyStatus(s) {
	case StatusOffDuty, StatusSleeperBerth, StatusDriving, StatusOnDutyNotDriving:
		return DutyStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown duty status %q", ErrValidation, s)
}

// Label returns the human-readable form used on log sheets and violations.
func (s DutyStatus) Label() string {
	switch s {
	case StatusOffDuty:
		return "Off Duty"
	case StatusSleeperBerth:
		return "Sleeper Berth"
	case StatusDriving:
		return "Driving"
	case StatusOnDutyNotDriving:
		return "On Duty (Not Driving)"
	}
	return string(s)
}

// IsRest reports whether time in this status counts toward the 10-hour
// consecutive rest requirement.
func (s DutyStatus) IsRest() bool {
	return s == StatusOffDuty || s == StatusSleeperBerth
}
