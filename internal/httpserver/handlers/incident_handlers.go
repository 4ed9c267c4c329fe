package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulseboard/internal/audit"
	"pulseboard/internal/auth"
	"pulseboard/internal/models"
	incidentsvc "pulseboard/internal/services/incident"
)

// findIncident scopes lookups to the project; soft-deleted rows are filtered
// by the ORM.
func findIncident(db *gorm.DB, projectID, incidentID string) (*models.Incident, error) {
	var inc models.Incident
	err := db.Where("id = ? AND project_id = ?", incidentID, projectID).First(&inc).Error
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func CreateIncident(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Severity    string `json:"severity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		title := strings.TrimSpace(req.Title)
		if title == "" {
			respondError(w, http.StatusBadRequest, "title is required")
			return
		}
		sev := models.Severity(req.Severity)
		if !sev.Valid() {
			respondError(w, http.StatusBadRequest, "invalid severity")
			return
		}

		userID := auth.UserID(r.Context())
		inc := models.Incident{
			ProjectID:   projectID,
			Title:       title,
			Description: req.Description,
			Severity:    sev,
			Status:      models.StatusOpen,
			CreatedBy:   userID,
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&inc).Error; err != nil {
				return err
			}
			entry := models.IncidentUpdate{
				ProjectID:  projectID,
				IncidentID: inc.ID,
				Type:       models.UpdateCreated,
				CreatedBy:  userID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			return audit.Record(tx, projectID, userID, audit.EventIncidentCreated,
				audit.EntityIncident, inc.ID,
				map[string]any{"title": inc.Title, "severity": inc.Severity})
		})
		if err != nil {
			lg.Errorw("create incident failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		lg.Infow("incident created", "incident_id", inc.ID, "severity", inc.Severity)
		respondJSON(w, http.StatusCreated, map[string]any{"incident": inc})
	}
}

func ListIncidents(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")

		page := clampInt(r.URL.Query().Get("page"), 1, 1, 1<<30)
		limit := clampInt(r.URL.Query().Get("limit"), 20, 1, 100)

		q := db.Model(&models.Incident{}).Where("project_id = ?", projectID)
		if s := r.URL.Query().Get("status"); s != "" {
			q = q.Where("status = ?", s)
		}
		if s := r.URL.Query().Get("severity"); s != "" {
			q = q.Where("severity = ?", s)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			lg.Errorw("count incidents failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		var items []models.Incident
		if err := q.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&items).Error; err != nil {
			lg.Errorw("list incidents failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"items": items, "page": page, "limit": limit, "total": total,
		})
	}
}

func GetIncident(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		incidentID := chi.URLParam(r, "incidentID")

		inc, err := findIncident(db, projectID, incidentID)
		if err != nil {
			respondError(w, http.StatusNotFound, "incident not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"incident": inc})
	}
}

func UpdateIncident(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		incidentID := chi.URLParam(r, "incidentID")
		var req struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			Severity    *string `json:"severity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		inc, err := findIncident(db, projectID, incidentID)
		if err != nil {
			respondError(w, http.StatusNotFound, "incident not found")
			return
		}

		changes, err := incidentsvc.ApplyUpdate(inc, incidentsvc.UpdateRequest{
			Title:       req.Title,
			Description: req.Description,
			Severity:    req.Severity,
		})
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		userID := auth.UserID(r.Context())
		inc.UpdatedAt = time.Now()
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(inc).Error; err != nil {
				return err
			}
			for _, c := range changes {
				entry := models.IncidentUpdate{
					ProjectID:  projectID,
					IncidentID: inc.ID,
					Type:       c.Type,
					Message:    c.Message,
					From:       c.From,
					To:         c.To,
					CreatedBy:  userID,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
				if err := audit.Record(tx, projectID, userID, c.Event,
					audit.EntityIncident, inc.ID,
					map[string]any{"from": c.From, "to": c.To}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			lg.Errorw("update incident failed", "incident_id", incidentID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		lg.Infow("incident updated", "incident_id", inc.ID, "changes", len(changes))
		respondJSON(w, http.StatusOK, map[string]any{"incident": inc})
	}
}

func DeleteIncident(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		incidentID := chi.URLParam(r, "incidentID")

		inc, err := findIncident(db, projectID, incidentID)
		if err != nil {
			respondError(w, http.StatusNotFound, "incident not found")
			return
		}

		userID := auth.UserID(r.Context())
		err = db.Transaction(func(tx *gorm.DB) error {
			entry := models.IncidentUpdate{
				ProjectID:  projectID,
				IncidentID: inc.ID,
				Type:       models.UpdateDeleted,
				CreatedBy:  userID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			if err := audit.Record(tx, projectID, userID, audit.EventIncidentDeleted,
				audit.EntityIncident, inc.ID, map[string]any{"title": inc.Title}); err != nil {
				return err
			}
			return tx.Delete(inc).Error
		})
		if err != nil {
			lg.Errorw("delete incident failed", "incident_id", incidentID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		lg.Infow("incident deleted", "incident_id", incidentID)
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func ChangeIncidentStatus(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		incidentID := chi.URLParam(r, "incidentID")
		var req struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		to := models.IncidentStatus(req.Status)
		if !to.Valid() {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}

		inc, err := findIncident(db, projectID, incidentID)
		if err != nil {
			respondError(w, http.StatusNotFound, "incident not found")
			return
		}
		from := inc.Status
		if from == to {
			respondError(w, http.StatusBadRequest, "status is already set to that value")
			return
		}
		inc.Status = to
		inc.UpdatedAt = time.Now()

		userID := auth.UserID(r.Context())
		entry := models.IncidentUpdate{
			ProjectID:  projectID,
			IncidentID: inc.ID,
			Type:       models.UpdateStatusChange,
			Message:    strings.TrimSpace(req.Message),
			From:       string(from),
			To:         string(to),
			CreatedBy:  userID,
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(inc).Error; err != nil {
				return err
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			return audit.Record(tx, projectID, userID, audit.EventIncidentStatus,
				audit.EntityIncident, inc.ID, map[string]any{"from": from, "to": to})
		})
		if err != nil {
			lg.Errorw("change status failed", "incident_id", incidentID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		lg.Infow("incident status changed", "incident_id", inc.ID, "from", from, "to", to)
		respondJSON(w, http.StatusOK, map[string]any{"incident": inc, "update": entry})
	}
}

func AddIncidentComment(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		incidentID := chi.URLParam(r, "incidentID")
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		message := strings.TrimSpace(req.Message)
		if message == "" {
			respondError(w, http.StatusBadRequest, "message is required")
			return
		}

		inc, err := findIncident(db, projectID, incidentID)
		if err != nil {
			respondError(w, http.StatusNotFound, "incident not found")
			return
		}

		userID := auth.UserID(r.Context())
		entry := models.IncidentUpdate{
			ProjectID:  projectID,
			IncidentID: inc.ID,
			Type:       models.UpdateComment,
			Message:    message,
			CreatedBy:  userID,
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			return audit.Record(tx, projectID, userID, audit.EventIncidentComment,
				audit.EntityIncident, inc.ID,
				map[string]any{"message_preview": incidentsvc.Preview(message)})
		})
		if err != nil {
			lg.Errorw("add comment failed", "incident_id", incidentID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{"update": entry})
	}
}

func GetIncidentTimeline(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		incidentID := chi.URLParam(r, "incidentID")

		if _, err := findIncident(db, projectID, incidentID); err != nil {
			respondError(w, http.StatusNotFound, "incident not found")
			return
		}

		var updates []models.IncidentUpdate
		err := db.Preload("Creator").
			Where("project_id = ? AND incident_id = ?", projectID, incidentID).
			Order("created_at desc").Find(&updates).Error
		if err != nil {
			lg.Errorw("load timeline failed", "incident_id", incidentID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		items := make([]map[string]any, 0, len(updates))
		for _, u := range updates {
			item := map[string]any{
				"id":         u.ID,
				"type":       u.Type,
				"message":    u.Message,
				"from":       u.From,
				"to":         u.To,
				"created_at": u.CreatedAt,
			}
			if u.Creator != nil {
				item["created_by"] = map[string]any{
					"id": u.Creator.ID, "name": u.Creator.Name, "email": u.Creator.Email,
				}
			} else {
				item["created_by"] = map[string]any{"id": u.CreatedBy}
			}
			items = append(items, item)
		}
		respondJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// clampInt parses s, falling back to def, and clamps into [min, max].
func clampInt(s string, def, min, max int) int {
	n := def
	if s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			n = v
		}
	}
	if n < min {
		n = min
	}
	if n > max {
		n = max
	}
	return n
}
