package repo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
)

// EntryRepo defines the persistence operations for duty-status log entries.
// All operations are scoped by driverID to enforce ownership.
type EntryRepo interface {
	// Create inserts a new entry and returns the persisted record.
	// An open entry (nil EndTime) collides with the partial unique index when
	// the driver already has one; that surfaces as domain.ErrConflict.
	Create(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error)

	// GetByID retrieves a single entry by its UUID, scoped to the driver.
	// Returns domain.ErrNotFound if no entry with that ID exists for that driver.
	GetByID(ctx context.Context, driverID, entryID uuid.UUID) (domain.LogEntry, error)

	// GetOpen returns the driver's currently open entry (end_time IS NULL).
	// Returns domain.ErrNotFound when the driver has no open entry.
	GetOpen(ctx context.Context, driverID uuid.UUID) (domain.LogEntry, error)

	// Transition atomically closes the driver's open entry at the given time
	// and opens next. The closing entry's end_time and the opened entry's
	// start_time are the same instant. When odometerEnd is non-nil it is
	// stamped onto the closing entry.
	//
	// The returned closed pointer is nil when the driver had no open entry
	// (the first entry of a fresh journal).
	// Returns domain.ErrConflict when the open entry already carries next's
	// status (a concurrent duplicate submit) or when the insert loses the
	// open-entry uniqueness race.
	Transition(ctx context.Context, driverID uuid.UUID, at time.Time, odometerEnd *float64, next domain.LogEntry) (closed *domain.LogEntry, opened domain.LogEntry, err error)

	// Update overwrites the mutable fields of an entry, scoped to the driver.
	// Returns domain.ErrNotFound if no entry with that ID exists for that driver.
	Update(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error)

	// ListByDate returns all entries for the given calendar date ordered by
	// start_time ascending.
	ListByDate(ctx context.Context, driverID uuid.UUID, date time.Time) ([]domain.LogEntry, error)

	// ListRange returns all entries whose log_date falls in [from, to],
	// ordered by start_time ascending.
	ListRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.LogEntry, error)

	// ListPaged returns one page of entries (newest first) and the total
	// count, optionally filtered to a single calendar date.
	ListPaged(ctx context.Context, driverID uuid.UUID, date *time.Time, p domain.PaginationParams) ([]domain.LogEntry, int64, error)
}

// pgEntryRepo is the Postgres implementation of EntryRepo.
type pgEntryRepo struct {
	db db
}

// NewEntryRepo constructs an EntryRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewEntryRepo(db db) EntryRepo {
	return &pgEntryRepo{db: db}
}

const entryColumns = `
	id, driver_id, log_date, start_time, end_time, duty_status,
	location, latitude, longitude, notes,
	vehicle_info, trailer_info, odometer_start, odometer_end,
	total_hours, is_pickup_dropoff, created_at, updated_at`

const insertEntry = `
	INSERT INTO log_entries (
		driver_id, log_date, start_time, end_time, duty_status,
		location, latitude, longitude, notes,
		vehicle_info, trailer_info, odometer_start, odometer_end,
		total_hours, is_pickup_dropoff
	) VALUES (
		@driver_id, @log_date, @start_time, @end_time, @duty_status,
		@location, @latitude, @longitude, @notes,
		@vehicle_info, @trailer_info, @odometer_start, @odometer_end,
		@total_hours, @is_pickup_dropoff
	)
	RETURNING` + entryColumns

func entryArgs(e domain.LogEntry) pgx.NamedArgs {
	return pgx.NamedArgs{
		"driver_id":         e.DriverID,
		"log_date":          e.LogDate,
		"start_time":        e.StartTime,
		"end_time":          e.EndTime, // nil becomes NULL
		"duty_status":       string(e.DutyStatus),
		"location":          e.Location,
		"latitude":          e.Latitude,
		"longitude":         e.Longitude,
		"notes":             e.Notes,
		"vehicle_info":      e.VehicleInfo,
		"trailer_info":      e.TrailerInfo,
		"odometer_start":    e.OdometerStart,
		"odometer_end":      e.OdometerEnd,
		"total_hours":       e.TotalHours,
		"is_pickup_dropoff": e.IsPickupDropoff,
	}
}

func (r *pgEntryRepo) Create(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error) {
	row := r.db.QueryRow(ctx, insertEntry, entryArgs(entry))
	result, err := scanEntry(row)
	if err != nil {
		if uniqueViolation(err) {
			return domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Create: %w", domain.ErrConflict)
		}
		return domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgEntryRepo) GetByID(ctx context.Context, driverID, entryID uuid.UUID) (domain.LogEntry, error) {
	q := `SELECT` + entryColumns + `
		FROM log_entries
		WHERE id = @id AND driver_id = @driver_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": entryID, "driver_id": driverID})
	result, err := scanEntry(row)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgEntryRepo) GetOpen(ctx context.Context, driverID uuid.UUID) (domain.LogEntry, error) {
	q := `SELECT` + entryColumns + `
		FROM log_entries
		WHERE driver_id = @driver_id AND end_time IS NULL`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID})
	result, err := scanEntry(row)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.GetOpen: %w", err)
	}
	return result, nil
}

// Transition performs the close-prior/open-next pair in one transaction.
// The open entry row is locked FOR UPDATE so two concurrent status changes
// serialize; the loser then sees either a changed status or the unique index.
func (r *pgEntryRepo) Transition(ctx context.Context, driverID uuid.UUID, at time.Time, odometerEnd *float64, next domain.LogEntry) (*domain.LogEntry, domain.LogEntry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Transition: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck — rollback after commit is a no-op

	lockQ := `SELECT` + entryColumns + `
		FROM log_entries
		WHERE driver_id = @driver_id AND end_time IS NULL
		FOR UPDATE`

	var closed *domain.LogEntry
	open, err := scanEntry(tx.QueryRow(ctx, lockQ, pgx.NamedArgs{"driver_id": driverID}))
	switch {
	case err == nil:
		if open.DutyStatus == next.DutyStatus {
			// A concurrent request already applied this transition.
			return nil, domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Transition: %w", domain.ErrConflict)
		}
		hours := roundHours(at.Sub(open.StartTime).Hours())
		closeQ := `
			UPDATE log_entries
			SET end_time     = @end_time,
			    total_hours  = @total_hours,
			    odometer_end = COALESCE(@odometer_end, odometer_end),
			    updated_at   = now()
			WHERE id = @id
			RETURNING` + entryColumns
		c, err := scanEntry(tx.QueryRow(ctx, closeQ, pgx.NamedArgs{
			"id":           open.ID,
			"end_time":     at,
			"total_hours":  hours,
			"odometer_end": odometerEnd,
		}))
		if err != nil {
			return nil, domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Transition: close: %w", err)
		}
		closed = &c
	case errors.Is(err, domain.ErrNotFound):
		// First entry of a fresh journal — nothing to close.
	default:
		return nil, domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Transition: lock: %w", err)
	}

	next.DriverID = driverID
	next.StartTime = at
	next.EndTime = nil
	opened, err := scanEntry(tx.QueryRow(ctx, insertEntry, entryArgs(next)))
	if err != nil {
		if uniqueViolation(err) {
			return nil, domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Transition: %w", domain.ErrConflict)
		}
		return nil, domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Transition: open: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Transition: commit: %w", err)
	}
	return closed, opened, nil
}

func (r *pgEntryRepo) Update(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error) {
	q := `
		UPDATE log_entries
		SET start_time     = @start_time,
		    end_time       = @end_time,
		    duty_status    = @duty_status,
		    location       = @location,
		    latitude       = @latitude,
		    longitude      = @longitude,
		    notes          = @notes,
		    vehicle_info   = @vehicle_info,
		    trailer_info   = @trailer_info,
		    odometer_start = @odometer_start,
		    odometer_end   = @odometer_end,
		    total_hours    = @total_hours,
		    updated_at     = now()
		WHERE id = @id AND driver_id = @driver_id
		RETURNING` + entryColumns

	args := entryArgs(entry)
	args["id"] = entry.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanEntry(row)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgEntryRepo) ListByDate(ctx context.Context, driverID uuid.UUID, date time.Time) ([]domain.LogEntry, error) {
	q := `SELECT` + entryColumns + `
		FROM log_entries
		WHERE driver_id = @driver_id AND log_date = @log_date
		ORDER BY start_time`

	return r.list(ctx, q, pgx.NamedArgs{"driver_id": driverID, "log_date": date}, "ListByDate")
}

func (r *pgEntryRepo) ListRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.LogEntry, error) {
	q := `SELECT` + entryColumns + `
		FROM log_entries
		WHERE driver_id = @driver_id AND log_date BETWEEN @from AND @to
		ORDER BY start_time`

	return r.list(ctx, q, pgx.NamedArgs{"driver_id": driverID, "from": from, "to": to}, "ListRange")
}

func (r *pgEntryRepo) ListPaged(ctx context.Context, driverID uuid.UUID, date *time.Time, p domain.PaginationParams) ([]domain.LogEntry, int64, error) {
	where := `WHERE driver_id = @driver_id`
	args := pgx.NamedArgs{
		"driver_id": driverID,
		"limit":     p.Limit,
		"offset":    p.Offset(),
	}
	if date != nil {
		where += ` AND log_date = @log_date`
		args["log_date"] = *date
	}

	var total int64
	countQ := `SELECT count(*) FROM log_entries ` + where
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.EntryRepo.ListPaged: count: %w", err)
	}

	q := `SELECT` + entryColumns + `
		FROM log_entries ` + where + `
		ORDER BY start_time DESC
		LIMIT @limit OFFSET @offset`
	entries, err := r.list(ctx, q, args, "ListPaged")
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *pgEntryRepo) list(ctx context.Context, q string, args pgx.NamedArgs, op string) ([]domain.LogEntry, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.%s: %w", op, err)
	}
	defer rows.Close()

	entries := []domain.LogEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EntryRepo.%s: scan: %w", op, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.%s: rows: %w", op, err)
	}
	return entries, nil
}

// roundHours rounds to two decimal places, the precision a paper log carries.
func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// scanEntry maps a single database row into a domain.LogEntry.
// It handles the UUID, date, and nullable column conversions.
func scanEntry(s scanner) (domain.LogEntry, error) {
	var (
		e        domain.LogEntry
		id       pgtype.UUID
		driverID pgtype.UUID
		logDate  pgtype.Date
		endTime  pgtype.Timestamptz
		lat      pgtype.Float8
		lng      pgtype.Float8
		odoStart pgtype.Float8
		odoEnd   pgtype.Float8
		status   string
	)

	err := s.Scan(
		&id, &driverID, &logDate, &e.StartTime, &endTime, &status,
		&e.Location, &lat, &lng, &e.Notes,
		&e.VehicleInfo, &e.TrailerInfo, &odoStart, &odoEnd,
		&e.TotalHours, &e.IsPickupDropoff, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LogEntry{}, domain.ErrNotFound
		}
		return domain.LogEntry{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.DriverID = uuid.UUID(driverID.Bytes)
	e.LogDate = logDate.Time
	e.DutyStatus = domain.DutyStatus(status)
	if endTime.Valid {
		t := endTime.Time
		e.EndTime = &t
	}
	if lat.Valid {
		v := lat.Float64
		e.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		e.Longitude = &v
	}
	if odoStart.Valid {
		v := odoStart.Float64
		e.OdometerStart = &v
	}
	if odoEnd.Valid {
		v := odoEnd.Float64
		e.OdometerEnd = &v
	}

	return e, nil
}
