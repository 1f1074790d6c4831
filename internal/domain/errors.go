package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required location, identical-status
// transition, negative duration).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write loses a race against concurrent state:
// a second open entry for the same driver, or a trip lifecycle transition
// that already happened. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrAlreadyCertified is returned when certifying a daily log that has
// already been certified. Certification is one-way; certified_at is never
// overwritten. Handlers should map this to HTTP 409.
var ErrAlreadyCertified = errors.New("daily log already certified")

// ErrUpstream is returned when an external collaborator (reverse geocoding)
// fails. Best-effort callers log it and continue; it never blocks a
// duty-status change.
var ErrUpstream = errors.New("upstream error")
