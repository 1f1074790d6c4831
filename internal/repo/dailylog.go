package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
)

// DailyLogRepo defines the persistence operations for daily log summaries.
type DailyLogRepo interface {
	// Upsert inserts or replaces the totals for (driver_id, log_date) and
	// returns the stored record. Certification fields are never touched by
	// an upsert — the service guards against regenerating certified logs,
	// and the SQL preserves is_certified/certified_at on conflict.
	Upsert(ctx context.Context, log domain.DailyLog) (domain.DailyLog, error)

	// GetByID retrieves a daily log by primary key, scoped to the driver.
	GetByID(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error)

	// GetByDate retrieves the daily log for a calendar date.
	// Returns domain.ErrNotFound when none has been generated yet.
	GetByDate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.DailyLog, error)

	// ListRange returns daily logs with log_date in [from, to], newest first.
	ListRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.DailyLog, error)

	// ListPaged returns one page of daily logs (newest first) and the total count.
	ListPaged(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.DailyLog, int64, error)

	// Certify sets is_certified and certified_at. The WHERE clause only
	// matches uncertified rows, so a second certification attempt falls
	// through to a lookup that distinguishes domain.ErrAlreadyCertified
	// from domain.ErrNotFound.
	Certify(ctx context.Context, driverID, logID uuid.UUID, at time.Time) (domain.DailyLog, error)
}

// pgDailyLogRepo is the Postgres implementation of DailyLogRepo.
type pgDailyLogRepo struct {
	db db
}

// NewDailyLogRepo constructs a DailyLogRepo backed by the provided db connection.
func NewDailyLogRepo(db db) DailyLogRepo {
	return &pgDailyLogRepo{db: db}
}

const dailyLogColumns = `
	id, driver_id, log_date,
	total_off_duty_hours, total_sleeper_berth_hours, total_driving_hours, total_on_duty_hours,
	is_certified, certified_at, created_at, updated_at`

func (r *pgDailyLogRepo) Upsert(ctx context.Context, log domain.DailyLog) (domain.DailyLog, error) {
	q := `
		INSERT INTO daily_logs (
			driver_id, log_date,
			total_off_duty_hours, total_sleeper_berth_hours,
			total_driving_hours, total_on_duty_hours
		) VALUES (
			@driver_id, @log_date, @off_duty, @sleeper, @driving, @on_duty
		)
		ON CONFLICT (driver_id, log_date) DO UPDATE SET
			total_off_duty_hours      = EXCLUDED.total_off_duty_hours,
			total_sleeper_berth_hours = EXCLUDED.total_sleeper_berth_hours,
			total_driving_hours       = EXCLUDED.total_driving_hours,
			total_on_duty_hours       = EXCLUDED.total_on_duty_hours,
			updated_at                = now()
		RETURNING` + dailyLogColumns

	args := pgx.NamedArgs{
		"driver_id": log.DriverID,
		"log_date":  log.LogDate,
		"off_duty":  log.TotalOffDutyHours,
		"sleeper":   log.TotalSleeperBerthHours,
		"driving":   log.TotalDrivingHours,
		"on_duty":   log.TotalOnDutyHours,
	}

	result, err := scanDailyLog(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.DailyLog{}, fmt.Errorf("repo.DailyLogRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgDailyLogRepo) GetByID(ctx context.Context, driverID, logID uuid.UUID) (domain.DailyLog, error) {
	q := `SELECT` + dailyLogColumns + `
		FROM daily_logs
		WHERE id = @id AND driver_id = @driver_id`

	result, err := scanDailyLog(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": logID, "driver_id": driverID}))
	if err != nil {
		return domain.DailyLog{}, fmt.Errorf("repo.DailyLogRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgDailyLogRepo) GetByDate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.DailyLog, error) {
	q := `SELECT` + dailyLogColumns + `
		FROM daily_logs
		WHERE driver_id = @driver_id AND log_date = @log_date`

	result, err := scanDailyLog(r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID, "log_date": date}))
	if err != nil {
		return domain.DailyLog{}, fmt.Errorf("repo.DailyLogRepo.GetByDate: %w", err)
	}
	return result, nil
}

func (r *pgDailyLogRepo) ListRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.DailyLog, error) {
	q := `SELECT` + dailyLogColumns + `
		FROM daily_logs
		WHERE driver_id = @driver_id AND log_date BETWEEN @from AND @to
		ORDER BY log_date DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"driver_id": driverID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("repo.DailyLogRepo.ListRange: %w", err)
	}
	defer rows.Close()
	return collectDailyLogs(rows, "ListRange")
}

func (r *pgDailyLogRepo) ListPaged(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.DailyLog, int64, error) {
	var total int64
	countQ := `SELECT count(*) FROM daily_logs WHERE driver_id = @driver_id`
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"driver_id": driverID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.DailyLogRepo.ListPaged: count: %w", err)
	}

	q := `SELECT` + dailyLogColumns + `
		FROM daily_logs
		WHERE driver_id = @driver_id
		ORDER BY log_date DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"driver_id": driverID,
		"limit":     p.Limit,
		"offset":    p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.DailyLogRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	logs, err := collectDailyLogs(rows, "ListPaged")
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *pgDailyLogRepo) Certify(ctx context.Context, driverID, logID uuid.UUID, at time.Time) (domain.DailyLog, error) {
	q := `
		UPDATE daily_logs
		SET is_certified = true,
		    certified_at = @certified_at,
		    updated_at   = now()
		WHERE id = @id AND driver_id = @driver_id AND is_certified = false
		RETURNING` + dailyLogColumns

	result, err := scanDailyLog(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":           logID,
		"driver_id":    driverID,
		"certified_at": at,
	}))
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.DailyLog{}, fmt.Errorf("repo.DailyLogRepo.Certify: %w", err)
	}

	// No uncertified row matched: either the log does not exist, or it is
	// already certified. Look it up to tell the caller which.
	existing, getErr := r.GetByID(ctx, driverID, logID)
	if getErr != nil {
		return domain.DailyLog{}, fmt.Errorf("repo.DailyLogRepo.Certify: %w", domain.ErrNotFound)
	}
	if existing.IsCertified {
		return domain.DailyLog{}, fmt.Errorf("repo.DailyLogRepo.Certify: %w", domain.ErrAlreadyCertified)
	}
	return domain.DailyLog{}, fmt.Errorf("repo.DailyLogRepo.Certify: %w", domain.ErrNotFound)
}

func collectDailyLogs(rows pgx.Rows, op string) ([]domain.DailyLog, error) {
	logs := []domain.DailyLog{}
	for rows.Next() {
		l, err := scanDailyLog(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DailyLogRepo.%s: scan: %w", op, err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DailyLogRepo.%s: rows: %w", op, err)
	}
	return logs, nil
}

// scanDailyLog maps a single database row into a domain.DailyLog.
func scanDailyLog(s scanner) (domain.DailyLog, error) {
	var (
		d           domain.DailyLog
		id          pgtype.UUID
		driverID    pgtype.UUID
		logDate     pgtype.Date
		certifiedAt pgtype.Timestamptz
	)

	err := s.Scan(
		&id, &driverID, &logDate,
		&d.TotalOffDutyHours, &d.TotalSleeperBerthHours, &d.TotalDrivingHours, &d.TotalOnDutyHours,
		&d.IsCertified, &certifiedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DailyLog{}, domain.ErrNotFound
		}
		return domain.DailyLog{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	d.DriverID = uuid.UUID(driverID.Bytes)
	d.LogDate = logDate.Time
	if certifiedAt.Valid {
		t := certifiedAt.Time
		d.CertifiedAt = &t
	}
	return d, nil
}
