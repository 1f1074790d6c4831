// Package handler implements the HTTP handlers for the HOS Logbook API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (auth.go, entry.go, dailylog.go, trip.go, export.go) but share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/service"
)

// The servicer interfaces are defined here, in the consumer package,
// following the "accept interfaces, return concrete types" convention.
// Handler tests inject hand-written mocks without touching the database.

// AuthServicer defines the account operations the auth handler depends on.
type AuthServicer interface {
	Register(ctx context.Context, req service.RegisterRequest) (domain.Driver, string, error)
	Login(ctx context.Context, email, password string) (domain.Driver, string, error)
	Profile(ctx context.Context, driverID uuid.UUID) (domain.Driver, error)
}

// DutyServicer defines the duty-status operations the log handlers depend on.
type DutyServicer interface {
	ChangeStatus(ctx context.Context, driverID uuid.UUID, req service.ChangeStatusRequest) (domain.LogEntry, error)
	CurrentStatus(ctx context.Context, driverID uuid.UUID) (service.HOSStatus, error)
	EditStartTime(ctx context.Context, driverID, entryID uuid.UUID, newStart time.Time) (domain.LogEntry, error)
	EditDuration(ctx context.Context, driverID, entryID uuid.UUID, hours float64) (domain.LogEntry, error)
	UpdateLocation(ctx context.Context, driverID uuid.UUID, lat, lng float64) (domain.LogEntry, error)
	ListEntries(ctx context.Context, driverID uuid.UUID, date *time.Time, p domain.PaginationParams) ([]domain.LogEntry, int64, error)
}

// DailyLogServicer defines the daily-log operations the log handlers depend on.
type DailyLogServicer interface {
	Generate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.DailyLog, error)
	Certify(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error)
	Get(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error)
	List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.DailyLog, int64, error)
}

// ViolationServicer defines the compliance-report operation.
type ViolationServicer interface {
	Report(ctx context.Context, driverID uuid.UUID, days int) ([]domain.Violation, error)
}

// TripServicer defines the trip-lifecycle operations the trip handler depends on.
type TripServicer interface {
	Create(ctx context.Context, driverID uuid.UUID, req service.CreateTripRequest) (domain.Trip, error)
	Start(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	Complete(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	Cancel(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	Current(ctx context.Context, driverID uuid.UUID) (domain.Trip, error)
	Get(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
}

// ExportServicer defines the document-rendering operations.
type ExportServicer interface {
	Rows(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]service.ExportRow, error)
	CSV(rows []service.ExportRow) ([]byte, error)
	XLSX(rows []service.ExportRow) ([]byte, error)
	LogSheetPDF(ctx context.Context, driverID uuid.UUID, date time.Time) ([]byte, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	auth       AuthServicer
	duty       DutyServicer
	daily      DailyLogServicer
	violations ViolationServicer
	trips      TripServicer
	export     ExportServicer
	log        *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(auth AuthServicer, duty DutyServicer, daily DailyLogServicer, violations ViolationServicer, trips TripServicer, export ExportServicer, log *slog.Logger) *Server {
	return &Server{
		auth:       auth,
		duty:       duty,
		daily:      daily,
		violations: violations,
		trips:      trips,
		export:     export,
		log:        log,
	}
}

// Routes mounts every endpoint. requireDriver is the auth middleware guarding
// the driver-scoped routes.
func (s *Server) Routes(requireDriver func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.RegisterDriver)
		r.Post("/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(requireDriver)
			r.Get("/me", s.Me)
		})
	})

	r.Route("/logs", func(r chi.Router) {
		r.Use(requireDriver)
		r.Get("/entries", s.ListEntries)
		r.Post("/entries", s.ChangeStatus)
		r.Put("/entries/{id}", s.CorrectEntry)
		r.Post("/location", s.UpdateLocation)
		r.Get("/status", s.CurrentStatus)
		r.Get("/daily", s.ListDailyLogs)
		r.Get("/daily/{id}", s.GetDailyLog)
		r.Post("/daily/generate/{date}", s.GenerateDailyLog)
		r.Post("/daily/{id}/certify", s.CertifyDailyLog)
		r.Get("/violations", s.Violations)
		r.Get("/pdf/{date}", s.LogSheetPDF)
		r.Get("/export", s.ExportEntries)
	})

	r.Route("/trips", func(r chi.Router) {
		r.Use(requireDriver)
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Get("/current", s.CurrentTrip)
		r.Get("/{id}", s.GetTrip)
		r.Post("/{id}/start", s.StartTrip)
		r.Post("/{id}/complete", s.CompleteTrip)
		r.Post("/{id}/cancel", s.CancelTrip)
	})

	return r
}
