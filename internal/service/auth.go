package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/repo"
)

// tokenTTL is how long an issued access token stays valid.
const tokenTTL = 24 * time.Hour

// ErrInvalidCredentials is returned by Login for both an unknown email and a
// wrong password, so the API does not leak which emails are registered.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService registers driver accounts and issues access tokens.
type AuthService struct {
	drivers repo.DriverRepo
	secret  []byte

	now func() time.Time
}

// NewAuthService constructs an AuthService signing tokens with secret.
func NewAuthService(drivers repo.DriverRepo, secret []byte) *AuthService {
	return &AuthService{
		drivers: drivers,
		secret:  secret,
		now:     time.Now,
	}
}

// RegisterRequest carries a new driver account.
type RegisterRequest struct {
	Email         string `validate:"required,email"`
	Name          string `validate:"required"`
	Password      string `validate:"required,min=8"`
	LicenseNumber string
	Company       string
	Timezone      string
	DefaultCycle  string
}

// Register creates a driver account and returns it with a fresh token.
// Returns domain.ErrConflict when the email is already registered.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (domain.Driver, string, error) {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.Driver{}, "", fmt.Errorf("%w: %s is invalid", domain.ErrValidation, snakeField(verrs[0].Field()))
		}
		return domain.Driver{}, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	cycle := domain.Cycle70Hours8Days
	if req.DefaultCycle != "" {
		parsed, err := domain.ParseCycle(req.DefaultCycle)
		if err != nil {
			return domain.Driver{}, "", err
		}
		cycle = parsed
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "America/New_York"
	} else if _, err := time.LoadLocation(timezone); err != nil {
		return domain.Driver{}, "", fmt.Errorf("%w: unknown timezone %q", domain.ErrValidation, timezone)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Driver{}, "", fmt.Errorf("service.AuthService.Register: hash password: %w", err)
	}

	driver, err := s.drivers.Create(ctx, domain.Driver{
		Email:         req.Email,
		Name:          req.Name,
		PasswordHash:  string(hash),
		LicenseNumber: req.LicenseNumber,
		Company:       req.Company,
		Timezone:      timezone,
		DefaultCycle:  cycle,
	})
	if err != nil {
		return domain.Driver{}, "", fmt.Errorf("service.AuthService.Register: %w", err)
	}

	token, err := s.issueToken(driver)
	if err != nil {
		return domain.Driver{}, "", err
	}
	return driver, token, nil
}

// Login verifies credentials and returns the driver with a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Driver, string, error) {
	driver, err := s.drivers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Driver{}, "", ErrInvalidCredentials
		}
		return domain.Driver{}, "", fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(driver.PasswordHash), []byte(password)) != nil {
		return domain.Driver{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(driver)
	if err != nil {
		return domain.Driver{}, "", err
	}
	return driver, token, nil
}

// Profile returns the authenticated driver's account.
func (s *AuthService) Profile(ctx context.Context, driverID uuid.UUID) (domain.Driver, error) {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.AuthService.Profile: %w", err)
	}
	return driver, nil
}

func (s *AuthService) issueToken(driver domain.Driver) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   driver.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("service.AuthService: sign token: %w", err)
	}
	return token, nil
}
