package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID, scoped to the driver.
	// Returns domain.ErrNotFound if no trip with that ID exists for that driver.
	GetByID(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)

	// GetActive returns the driver's single active trip.
	// Returns domain.ErrNotFound when no trip is active.
	GetActive(ctx context.Context, driverID uuid.UUID) (domain.Trip, error)

	// List returns one page of the driver's trips (newest first) and the
	// total count.
	List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites the mutable fields of a trip and returns the updated
	// record. Returns domain.ErrNotFound if it does not exist for that driver.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `
	id, driver_id, name, current_location, pickup_location, dropoff_location,
	current_cycle, status, start_time, end_time, total_distance,
	created_at, updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		INSERT INTO trips (
			driver_id, name, current_location, pickup_location, dropoff_location,
			current_cycle, status, start_time, end_time, total_distance
		) VALUES (
			@driver_id, @name, @current_location, @pickup_location, @dropoff_location,
			@current_cycle, @status, @start_time, @end_time, @total_distance
		)
		RETURNING` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, tripArgs(trip)))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	q := `SELECT` + tripColumns + `
		FROM trips
		WHERE id = @id AND driver_id = @driver_id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": tripID, "driver_id": driverID}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetActive(ctx context.Context, driverID uuid.UUID) (domain.Trip, error) {
	q := `SELECT` + tripColumns + `
		FROM trips
		WHERE driver_id = @driver_id AND status = 'active'
		ORDER BY start_time DESC
		LIMIT 1`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetActive: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	args := pgx.NamedArgs{
		"driver_id": driverID,
		"limit":     p.Limit,
		"offset":    p.Offset(),
	}

	var total int64
	countQ := `SELECT count(*) FROM trips WHERE driver_id = @driver_id`
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.List: count: %w", err)
	}

	q := `SELECT` + tripColumns + `
		FROM trips
		WHERE driver_id = @driver_id
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		UPDATE trips
		SET name             = @name,
		    current_location = @current_location,
		    pickup_location  = @pickup_location,
		    dropoff_location = @dropoff_location,
		    current_cycle    = @current_cycle,
		    status           = @status,
		    start_time       = @start_time,
		    end_time         = @end_time,
		    total_distance   = @total_distance,
		    updated_at       = now()
		WHERE id = @id AND driver_id = @driver_id
		RETURNING` + tripColumns

	args := tripArgs(trip)
	args["id"] = trip.ID

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func tripArgs(t domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"driver_id":        t.DriverID,
		"name":             t.Name,
		"current_location": t.CurrentLocation,
		"pickup_location":  t.PickupLocation,
		"dropoff_location": t.DropoffLocation,
		"current_cycle":    string(t.CurrentCycle),
		"status":           string(t.Status),
		"start_time":       t.StartTime,
		"end_time":         t.EndTime,
		"total_distance":   t.TotalDistance,
	}
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		driverID  pgtype.UUID
		cycle     string
		status    string
		startTime pgtype.Timestamptz
		endTime   pgtype.Timestamptz
		distance  pgtype.Float8
	)

	err := s.Scan(
		&id, &driverID, &t.Name, &t.CurrentLocation, &t.PickupLocation, &t.DropoffLocation,
		&cycle, &status, &startTime, &endTime, &distance,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.DriverID = uuid.UUID(driverID.Bytes)
	t.CurrentCycle = domain.Cycle(cycle)
	t.Status = domain.TripStatus(status)
	if startTime.Valid {
		v := startTime.Time
		t.StartTime = &v
	}
	if endTime.Valid {
		v := endTime.Time
		t.EndTime = &v
	}
	if distance.Valid {
		v := distance.Float64
		t.TotalDistance = &v
	}
	return t, nil
}
