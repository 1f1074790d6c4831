package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// driverContextKey is the context key under which the authenticated driver's
// ID is stored. An unexported struct type prevents collisions with keys from
// other packages.
type driverContextKey struct{}

// RequireDriver returns a middleware that validates the Authorization bearer
// token and stores the driver ID from its subject claim in the request
// context. Requests without a valid token are rejected with 401.
func RequireDriver(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims := jwt.RegisteredClaims{}
			_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			driverID, err := uuid.Parse(claims.Subject)
			if err != nil {
				http.Error(w, "invalid token subject", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), driverContextKey{}, driverID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DriverID extracts the authenticated driver's ID from the request context.
// The boolean is false when the request did not pass through RequireDriver.
func DriverID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(driverContextKey{}).(uuid.UUID)
	return id, ok
}

// WithDriverID returns a context carrying the given driver ID.
// Exported for handler tests that bypass the auth middleware.
func WithDriverID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, driverContextKey{}, id)
}
