package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nadiaharb/apply-wise/internal/token"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID.
	UserIDKey contextKey = "userID"
)

// writeAuthError sends a JSON error body matching the API's error shape.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// RequireSession validates the Bearer token on the request and stores the
// authenticated user ID in the context. Only full-scope session tokens pass;
// step-up tokens are rejected even when otherwise valid, so a half-finished
// login cannot reach protected resources.
func RequireSession(issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			raw := strings.TrimPrefix(header, "Bearer ")
			identity, err := issuer.Validate(raw, token.ScopeSession)
			if err != nil {
				if errors.Is(err, token.ErrExpired) {
					writeAuthError(w, http.StatusUnauthorized, "Session expired")
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "Invalid session")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, identity.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromCtx extracts the authenticated user's ID from the request
// context. Returns uuid.Nil if no user is authenticated.
func UserIDFromCtx(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return id
}
