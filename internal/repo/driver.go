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

// DriverRepo defines the persistence operations for driver accounts.
type DriverRepo interface {
	// Create inserts a new driver. Returns domain.ErrConflict when the email
	// is already registered.
	Create(ctx context.Context, driver domain.Driver) (domain.Driver, error)

	// GetByID retrieves a driver by primary key.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)

	// GetByEmail retrieves a driver by email address.
	GetByEmail(ctx context.Context, email string) (domain.Driver, error)
}

// pgDriverRepo is the Postgres implementation of DriverRepo.
type pgDriverRepo struct {
	db db
}

// NewDriverRepo constructs a DriverRepo backed by the provided db connection.
func NewDriverRepo(db db) DriverRepo {
	return &pgDriverRepo{db: db}
}

const driverColumns = `
	id, email, name, password_hash, license_number, company,
	timezone, default_cycle, created_at, updated_at`

func (r *pgDriverRepo) Create(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	q := `
		INSERT INTO drivers (
			email, name, password_hash, license_number, company, timezone, default_cycle
		) VALUES (
			@email, @name, @password_hash, @license_number, @company, @timezone, @default_cycle
		)
		RETURNING` + driverColumns

	args := pgx.NamedArgs{
		"email":          driver.Email,
		"name":           driver.Name,
		"password_hash":  driver.PasswordHash,
		"license_number": driver.LicenseNumber,
		"company":        driver.Company,
		"timezone":       driver.Timezone,
		"default_cycle":  string(driver.DefaultCycle),
	}

	result, err := scanDriver(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if uniqueViolation(err) {
			return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Create: %w", domain.ErrConflict)
		}
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	q := `SELECT` + driverColumns + ` FROM drivers WHERE id = @id`

	result, err := scanDriver(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgDriverRepo) GetByEmail(ctx context.Context, email string) (domain.Driver, error) {
	q := `SELECT` + driverColumns + ` FROM drivers WHERE email = @email`

	result, err := scanDriver(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.GetByEmail: %w", err)
	}
	return result, nil
}

// scanDriver maps a single database row into a domain.Driver.
func scanDriver(s scanner) (domain.Driver, error) {
	var (
		d     domain.Driver
		id    pgtype.UUID
		cycle string
	)

	err := s.Scan(
		&id, &d.Email, &d.Name, &d.PasswordHash, &d.LicenseNumber, &d.Company,
		&d.Timezone, &cycle, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Driver{}, domain.ErrNotFound
		}
		return domain.Driver{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	d.DefaultCycle = domain.Cycle(cycle)
	return d, nil
}
