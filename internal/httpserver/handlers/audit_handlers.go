package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulseboard/internal/models"
)

// ListAuditEvents surfaces the append-only audit trail to project viewers,
// newest first.
func ListAuditEvents(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		limit := clampInt(r.URL.Query().Get("limit"), 50, 1, 200)

		var entries []models.AuditLog
		err := db.Where("project_id = ?", projectID).
			Order("created_at desc").Limit(limit).Find(&entries).Error
		if err != nil {
			lg.Errorw("list audit events failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"items": entries})
	}
}
