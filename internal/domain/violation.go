package domain

import "time"

// Regulatory hour limits. These are fixed by the FMCSA property-carrying
// rules, not configuration.
const (
	// MaxDrivingHours is the 11-hour daily driving limit.
	MaxDrivingHours = 11.0

	// MaxOnDutyWindowHours is the 14-hour on-duty window. Driving and
	// on-duty-not-driving hours both count against it.
	MaxOnDutyWindowHours = 14.0

	// MinConsecutiveRestHours is the consecutive off-duty/sleeper-berth rest
	// required before a driving period.
	MinConsecutiveRestHours = 10.0

	// PickupDropoffWindow is how long an on_duty_not_driving pickup/drop-off
	// entry stays open before the tracker auto-reverts it to driving.
	PickupDropoffWindow = time.Hour
)

// ViolationType identifies which regulatory threshold was breached.
type ViolationType string

const (
	ViolationDrivingLimit     ViolationType = "driving_limit_exceeded"
	ViolationOnDutyWindow     ViolationType = "on_duty_window_exceeded"
	ViolationInsufficientRest ViolationType = "insufficient_rest"
)

// Severity grades a violation. Threshold breaches on the daily limits are
// critical; rest-requirement breaches are major.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Violation is a derived compliance finding. It is computed from a DailyLog
// plus the day's entry sequence and never persisted independently of the
// check that produced it.
type Violation struct {
	Type        ViolationType `json:"type"`
	Description string        `json:"description"`
	Severity    Severity      `json:"severity"`
	Timestamp   time.Time     `json:"timestamp"`
}
