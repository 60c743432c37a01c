package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nadiaharb/apply-wise/internal/models"
)

// PlanDirectory looks up the user whose plan is being checked.
type PlanDirectory interface {
	FindByID(id uuid.UUID) (*models.User, error)
}

// RequirePro gates a route behind the Pro plan. Must be applied after
// RequireSession. Free-plan users get a 403 with an upgrade hint the client
// uses to show the paywall.
func RequirePro(users PlanDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromCtx(r.Context())

			user, err := users.FindByID(userID)
			if err != nil {
				writeAuthError(w, http.StatusInternalServerError, "Something went wrong")
				return
			}
			if user == nil || !user.IsPro() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"message":"This feature requires a Pro plan","upgrade":true}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
