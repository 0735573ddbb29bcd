// Package middleware holds HTTP middleware for the API surface.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Mad-three/server/internal/auth/session"
)

type contextKey string

const userIDKey contextKey = "userId"

// UserIDFromContext returns the authenticated user's id set by
// SessionAuth. ok is false on unauthenticated requests.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}

// SessionAuth validates the bearer session token and stores the bound
// user id in the request context.
func SessionAuth(sessions *session.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "authentication token required")
				return
			}

			userID, err := sessions.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				if errors.Is(err, session.ErrExpired) {
					unauthorized(w, "session token expired")
					return
				}
				unauthorized(w, "invalid session token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message": "` + message + `"}`))
}
