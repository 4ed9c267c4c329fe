package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"pulseboard/internal/models"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// RequireAuth validates the bearer token and stores the user id in the
// request context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		userID, err := Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// RequireProjectRole gates a project-scoped route on role rank. An invited
// membership that has not been accepted confers no access.
func RequireProjectRole(db *gorm.DB, min models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserID(r.Context())
			if userID == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			projectID := chi.URLParam(r, "projectID")
			if projectID == "" {
				writeError(w, http.StatusBadRequest, "missing project id")
				return
			}
			var m models.Membership
			err := db.Where("project_id = ? AND user_id = ? AND status = ?",
				projectID, userID, models.MembershipActive).First(&m).Error
			if err != nil {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			if !m.Role.AtLeast(min) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
