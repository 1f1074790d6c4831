package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/repo"
	"github.com/spotterhq/hos-logbook/backend/internal/service"
)

// Hand-written test doubles for the repo interfaces. Each method is a
// function field — set only the ones your test needs. This is idiomatic Go:
// no mock generation library required for simple cases.

type mockEntryRepo struct {
	create     func(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error)
	getByID    func(ctx context.Context, driverID, entryID uuid.UUID) (domain.LogEntry, error)
	getOpen    func(ctx context.Context, driverID uuid.UUID) (domain.LogEntry, error)
	transition func(ctx context.Context, driverID uuid.UUID, at time.Time, odometerEnd *float64, next domain.LogEntry) (*domain.LogEntry, domain.LogEntry, error)
	update     func(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error)
	listByDate func(ctx context.Context, driverID uuid.UUID, date time.Time) ([]domain.LogEntry, error)
	listRange  func(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.LogEntry, error)
	listPaged  func(ctx context.Context, driverID uuid.UUID, date *time.Time, p domain.PaginationParams) ([]domain.LogEntry, int64, error)
}

func (m *mockEntryRepo) Create(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error) {
	return m.create(ctx, entry)
}
func (m *mockEntryRepo) GetByID(ctx context.Context, driverID, entryID uuid.UUID) (domain.LogEntry, error) {
	return m.getByID(ctx, driverID, entryID)
}
func (m *mockEntryRepo) GetOpen(ctx context.Context, driverID uuid.UUID) (domain.LogEntry, error) {
	return m.getOpen(ctx, driverID)
}
func (m *mockEntryRepo) Transition(ctx context.Context, driverID uuid.UUID, at time.Time, odometerEnd *float64, next domain.LogEntry) (*domain.LogEntry, domain.LogEntry, error) {
	return m.transition(ctx, driverID, at, odometerEnd, next)
}
func (m *mockEntryRepo) Update(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error) {
	return m.update(ctx, entry)
}
func (m *mockEntryRepo) ListByDate(ctx context.Context, driverID uuid.UUID, date time.Time) ([]domain.LogEntry, error) {
	return m.listByDate(ctx, driverID, date)
}
func (m *mockEntryRepo) ListRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.LogEntry, error) {
	return m.listRange(ctx, driverID, from, to)
}
func (m *mockEntryRepo) ListPaged(ctx context.Context, driverID uuid.UUID, date *time.Time, p domain.PaginationParams) ([]domain.LogEntry, int64, error) {
	return m.listPaged(ctx, driverID, date, p)
}

var _ repo.EntryRepo = (*mockEntryRepo)(nil)

type mockDriverRepo struct {
	create     func(ctx context.Context, driver domain.Driver) (domain.Driver, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	getByEmail func(ctx context.Context, email string) (domain.Driver, error)
}

func (m *mockDriverRepo) Create(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	return m.create(ctx, driver)
}
func (m *mockDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	return m.getByID(ctx, id)
}
func (m *mockDriverRepo) GetByEmail(ctx context.Context, email string) (domain.Driver, error) {
	return m.getByEmail(ctx, email)
}

var _ repo.DriverRepo = (*mockDriverRepo)(nil)

type mockDailyLogRepo struct {
	upsert    func(ctx context.Context, log domain.DailyLog) (domain.DailyLog, error)
	getByID   func(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error)
	getByDate func(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.DailyLog, error)
	listRange func(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.DailyLog, error)
	listPaged func(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.DailyLog, int64, error)
	certify   func(ctx context.Context, driverID, logID uuid.UUID, at time.Time) (domain.DailyLog, error)
}

func (m *mockDailyLogRepo) Upsert(ctx context.Context, log domain.DailyLog) (domain.DailyLog, error) {
	return m.upsert(ctx, log)
}
func (m *mockDailyLogRepo) GetByID(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error) {
	return m.getByID(ctx, driverID, logID)
}
func (m *mockDailyLogRepo) GetByDate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.DailyLog, error) {
	return m.getByDate(ctx, driverID, date)
}
func (m *mockDailyLogRepo) ListRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.DailyLog, error) {
	return m.listRange(ctx, driverID, from, to)
}
func (m *mockDailyLogRepo) ListPaged(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.DailyLog, int64, error) {
	return m.listPaged(ctx, driverID, p)
}
func (m *mockDailyLogRepo) Certify(ctx context.Context, driverID, logID uuid.UUID, at time.Time) (domain.DailyLog, error) {
	return m.certify(ctx, driverID, logID, at)
}

var _ repo.DailyLogRepo = (*mockDailyLogRepo)(nil)

type mockTripRepo struct {
	create    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID   func(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	getActive func(ctx context.Context, driverID uuid.UUID) (domain.Trip, error)
	list      func(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, driverID, tripID)
}
func (m *mockTripRepo) GetActive(ctx context.Context, driverID uuid.UUID) (domain.Trip, error) {
	return m.getActive(ctx, driverID)
}
func (m *mockTripRepo) List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.list(ctx, driverID, p)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockGeocoder struct {
	reverse func(ctx context.Context, lat, lng float64) (string, error)
}

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	return m.reverse(ctx, lat, lng)
}

var _ service.Geocoder = (*mockGeocoder)(nil)
