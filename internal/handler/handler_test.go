package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/handler"
	"github.com/spotterhq/hos-logbook/backend/internal/middleware"
	"github.com/spotterhq/hos-logbook/backend/internal/service"
)

// testDriverID is the identity stubAuth injects into every request.
var testDriverID = uuid.New()

// stubAuth replaces the JWT middleware in handler tests: it injects a fixed
// driver ID instead of parsing a token.
func stubAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithDriverID(r.Context(), testDriverID)))
	})
}

// newTestServer mounts the full route tree over the given mocks.
// Nil mocks are fine for routes a test never touches.
func newTestServer(auth handler.AuthServicer, duty handler.DutyServicer, daily handler.DailyLogServicer, violations handler.ViolationServicer, trips handler.TripServicer, export handler.ExportServicer) *httptest.Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := handler.NewServer(auth, duty, daily, violations, trips, export, log)
	return httptest.NewServer(srv.Routes(stubAuth))
}

// Hand-written servicer mocks, function fields per method.

type mockDutyServicer struct {
	changeStatus   func(ctx context.Context, driverID uuid.UUID, req service.ChangeStatusRequest) (domain.LogEntry, error)
	currentStatus  func(ctx context.Context, driverID uuid.UUID) (service.HOSStatus, error)
	editStartTime  func(ctx context.Context, driverID, entryID uuid.UUID, newStart time.Time) (domain.LogEntry, error)
	editDuration   func(ctx context.Context, driverID, entryID uuid.UUID, hours float64) (domain.LogEntry, error)
	updateLocation func(ctx context.Context, driverID uuid.UUID, lat, lng float64) (domain.LogEntry, error)
	listEntries    func(ctx context.Context, driverID uuid.UUID, date *time.Time, p domain.PaginationParams) ([]domain.LogEntry, int64, error)
}

func (m *mockDutyServicer) ChangeStatus(ctx context.Context, driverID uuid.UUID, req service.ChangeStatusRequest) (domain.LogEntry, error) {
	return m.changeStatus(ctx, driverID, req)
}
func (m *mockDutyServicer) CurrentStatus(ctx context.Context, driverID uuid.UUID) (service.HOSStatus, error) {
	return m.currentStatus(ctx, driverID)
}
func (m *mockDutyServicer) EditStartTime(ctx context.Context, driverID, entryID uuid.UUID, newStart time.Time) (domain.LogEntry, error) {
	return m.editStartTime(ctx, driverID, entryID, newStart)
}
func (m *mockDutyServicer) EditDuration(ctx context.Context, driverID, entryID uuid.UUID, hours float64) (domain.LogEntry, error) {
	return m.editDuration(ctx, driverID, entryID, hours)
}
func (m *mockDutyServicer) UpdateLocation(ctx context.Context, driverID uuid.UUID, lat, lng float64) (domain.LogEntry, error) {
	return m.updateLocation(ctx, driverID, lat, lng)
}
func (m *mockDutyServicer) ListEntries(ctx context.Context, driverID uuid.UUID, date *time.Time, p domain.PaginationParams) ([]domain.LogEntry, int64, error) {
	return m.listEntries(ctx, driverID, date, p)
}

var _ handler.DutyServicer = (*mockDutyServicer)(nil)

type mockDailyLogServicer struct {
	generate func(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.DailyLog, error)
	certify  func(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error)
	get      func(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error)
	list     func(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.DailyLog, int64, error)
}

func (m *mockDailyLogServicer) Generate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.DailyLog, error) {
	return m.generate(ctx, driverID, date)
}
func (m *mockDailyLogServicer) Certify(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error) {
	return m.certify(ctx, driverID, logID)
}
func (m *mockDailyLogServicer) Get(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error) {
	return m.get(ctx, driverID, logID)
}
func (m *mockDailyLogServicer) List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.DailyLog, int64, error) {
	return m.list(ctx, driverID, p)
}

var _ handler.DailyLogServicer = (*mockDailyLogServicer)(nil)

type mockTripServicer struct {
	create   func(ctx context.Context, driverID uuid.UUID, req service.CreateTripRequest) (domain.Trip, error)
	start    func(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	complete func(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	cancel   func(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	current  func(ctx context.Context, driverID uuid.UUID) (domain.Trip, error)
	get      func(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	list     func(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
}

func (m *mockTripServicer) Create(ctx context.Context, driverID uuid.UUID, req service.CreateTripRequest) (domain.Trip, error) {
	return m.create(ctx, driverID, req)
}
func (m *mockTripServicer) Start(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	return m.start(ctx, driverID, tripID)
}
func (m *mockTripServicer) Complete(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	return m.complete(ctx, driverID, tripID)
}
func (m *mockTripServicer) Cancel(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	return m.cancel(ctx, driverID, tripID)
}
func (m *mockTripServicer) Current(ctx context.Context, driverID uuid.UUID) (domain.Trip, error) {
	return m.current(ctx, driverID)
}
func (m *mockTripServicer) Get(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, driverID, tripID)
}
func (m *mockTripServicer) List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.list(ctx, driverID, p)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockAuthServicer struct {
	register func(ctx context.Context, req service.RegisterRequest) (domain.Driver, string, error)
	login    func(ctx context.Context, email, password string) (domain.Driver, string, error)
	profile  func(ctx context.Context, driverID uuid.UUID) (domain.Driver, error)
}

func (m *mockAuthServicer) Register(ctx context.Context, req service.RegisterRequest) (domain.Driver, string, error) {
	return m.register(ctx, req)
}
func (m *mockAuthServicer) Login(ctx context.Context, email, password string) (domain.Driver, string, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuthServicer) Profile(ctx context.Context, driverID uuid.UUID) (domain.Driver, error) {
	return m.profile(ctx, driverID)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

type mockExportServicer struct {
	rows        func(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]service.ExportRow, error)
	csv         func(rows []service.ExportRow) ([]byte, error)
	xlsx        func(rows []service.ExportRow) ([]byte, error)
	logSheetPDF func(ctx context.Context, driverID uuid.UUID, date time.Time) ([]byte, error)
}

func (m *mockExportServicer) Rows(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]service.ExportRow, error) {
	return m.rows(ctx, driverID, from, to)
}
func (m *mockExportServicer) CSV(rows []service.ExportRow) ([]byte, error)  { return m.csv(rows) }
func (m *mockExportServicer) XLSX(rows []service.ExportRow) ([]byte, error) { return m.xlsx(rows) }
func (m *mockExportServicer) LogSheetPDF(ctx context.Context, driverID uuid.UUID, date time.Time) ([]byte, error) {
	return m.logSheetPDF(ctx, driverID, date)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

type mockViolationServicer struct {
	report func(ctx context.Context, driverID uuid.UUID, days int) ([]domain.Violation, error)
}

func (m *mockViolationServicer) Report(ctx context.Context, driverID uuid.UUID, days int) ([]domain.Violation, error) {
	return m.report(ctx, driverID, days)
}

var _ handler.ViolationServicer = (*mockViolationServicer)(nil)
