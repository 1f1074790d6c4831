package service_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/service"
)

var testSecret = []byte("test-secret")

func registerReq() service.RegisterRequest {
	return service.RegisterRequest{
		Email:         "maria@haulage.test",
		Name:          "Maria Vasquez",
		Password:      "correct horse battery",
		LicenseNumber: "TX-4481923",
		Company:       "Spotter Haulage",
		Timezone:      "America/Chicago",
	}
}

func TestAuthService_Register(t *testing.T) {
	var stored domain.Driver
	drivers := &mockDriverRepo{
		create: func(_ context.Context, d domain.Driver) (domain.Driver, error) {
			d.ID = uuid.New()
			stored = d
			return d, nil
		},
	}

	svc := service.NewAuthService(drivers, testSecret)
	driver, token, err := svc.Register(context.Background(), registerReq())

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, domain.Cycle70Hours8Days, driver.DefaultCycle, "cycle defaults to 70/8")
	assert.NotEqual(t, "correct horse battery", stored.PasswordHash, "password must be hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse battery")))

	// Token subject must be the driver id.
	claims := jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) { return testSecret, nil })
	require.NoError(t, err)
	assert.Equal(t, driver.ID.String(), claims.Subject)
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	svc := service.NewAuthService(&mockDriverRepo{}, testSecret)

	req := registerReq()
	req.Password = "short"

	_, _, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthService_Register_BadTimezone(t *testing.T) {
	svc := service.NewAuthService(&mockDriverRepo{}, testSecret)

	req := registerReq()
	req.Timezone = "Mars/Olympus_Mons"

	_, _, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	drivers := &mockDriverRepo{
		create: func(_ context.Context, _ domain.Driver) (domain.Driver, error) {
			return domain.Driver{}, domain.ErrConflict
		},
	}

	svc := service.NewAuthService(drivers, testSecret)
	_, _, err := svc.Register(context.Background(), registerReq())

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.MinCost)
	require.NoError(t, err)

	driver := testDriver()
	driver.PasswordHash = string(hash)

	drivers := &mockDriverRepo{
		getByEmail: func(_ context.Context, email string) (domain.Driver, error) {
			if email != driver.Email {
				return domain.Driver{}, domain.ErrNotFound
			}
			return driver, nil
		},
	}
	svc := service.NewAuthService(drivers, testSecret)

	t.Run("valid credentials", func(t *testing.T) {
		got, token, err := svc.Login(context.Background(), driver.Email, "correct horse battery")
		require.NoError(t, err)
		assert.Equal(t, driver.ID, got.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), driver.Email, "nope")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "ghost@haulage.test", "correct horse battery")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials,
			"unknown email and wrong password must be indistinguishable")
	})
}
