package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spotterhq/hos-logbook/backend/internal/domain"
	"github.com/spotterhq/hos-logbook/backend/internal/middleware"
	"github.com/spotterhq/hos-logbook/backend/internal/service"
)

type registerRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Password      string `json:"password"`
	LicenseNumber string `json:"license_number"`
	Company       string `json:"company"`
	Timezone      string `json:"timezone"`
	DefaultCycle  string `json:"default_cycle"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Driver domain.Driver `json:"driver"`
	Token  string        `json:"token"`
}

// RegisterDriver handles POST /auth/register.
func (s *Server) RegisterDriver(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	driver, token, err := s.auth.Register(r.Context(), service.RegisterRequest{
		Email:         req.Email,
		Name:          req.Name,
		Password:      req.Password,
		LicenseNumber: req.LicenseNumber,
		Company:       req.Company,
		Timezone:      req.Timezone,
		DefaultCycle:  req.DefaultCycle,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Driver: driver, Token: token})
}

// Login handles POST /auth/login. Bad credentials produce 401 with a single
// generic message regardless of which part was wrong.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	driver, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error: ErrorDetail{Code: "invalid_credentials", Message: "invalid email or password"},
			})
			return
		}
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Driver: driver, Token: token})
}

// Me handles GET /auth/me.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	driver, err := s.auth.Profile(r.Context(), driverID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}
