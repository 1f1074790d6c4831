package service

import "time"

// Clock overrides for deterministic tests. Visible to the service_test
// package because both are compiled into the same test binary.

func SetDutyClock(s *DutyService, now func() time.Time) { s.now = now }

func SetDailyLogClock(s *DailyLogService, now func() time.Time) { s.now = now }

func SetViolationClock(s *ViolationService, now func() time.Time) { s.now = now }

func SetTripClock(s *TripService, now func() time.Time) { s.now = now }

func SetAuthClock(s *AuthService, now func() time.Time) { s.now = now }

func SetExportClock(s *ExportService, now func() time.Time) { s.now = now }

// Truncate exposes the log-sheet text shortener.
func Truncate(s string, n int) string { return truncate(s, n) }
