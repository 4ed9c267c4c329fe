package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulseboard/internal/audit"
	"pulseboard/internal/auth"
	"pulseboard/internal/models"
)

func CreateProject(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondError(w, http.StatusBadRequest, "project name is required")
			return
		}

		userID := auth.UserID(r.Context())
		p := models.Project{Name: name, Description: req.Description, CreatedBy: userID}
		// Project and its first OWNER membership must land together.
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			m := models.Membership{
				ProjectID: p.ID,
				UserID:    userID,
				Role:      models.RoleOwner,
				Status:    models.MembershipActive,
			}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			return audit.Record(tx, p.ID, userID, audit.EventProjectCreated,
				audit.EntityProject, p.ID, map[string]any{"name": p.Name})
		})
		if err != nil {
			lg.Errorw("create project failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		lg.Infow("project created", "project_id", p.ID, "user_id", userID)
		respondJSON(w, http.StatusCreated, map[string]any{"project": p})
	}
}

func ListMyProjects(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())

		var memberships []models.Membership
		if err := db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
			lg.Errorw("list memberships failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ids := make([]string, 0, len(memberships))
		byProject := make(map[string]models.Membership, len(memberships))
		for _, m := range memberships {
			ids = append(ids, m.ProjectID)
			byProject[m.ProjectID] = m
		}

		var projects []models.Project
		if len(ids) > 0 {
			if err := db.Where("id IN ?", ids).Order("created_at desc").Find(&projects).Error; err != nil {
				lg.Errorw("list projects failed", "error", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
		}

		items := make([]map[string]any, 0, len(projects))
		for _, p := range projects {
			m := byProject[p.ID]
			items = append(items, map[string]any{
				"id":                p.ID,
				"name":              p.Name,
				"description":       p.Description,
				"role":              m.Role,
				"membership_status": m.Status,
			})
		}
		respondJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

func UpdateProject(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		var req struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var p models.Project
		if err := db.First(&p, "id = ?", projectID).Error; err != nil {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondError(w, http.StatusBadRequest, "project name cannot be empty")
				return
			}
			p.Name = name
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		p.UpdatedAt = time.Now()

		userID := auth.UserID(r.Context())
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&p).Error; err != nil {
				return err
			}
			return audit.Record(tx, p.ID, userID, audit.EventProjectUpdated,
				audit.EntityProject, p.ID, map[string]any{"name": p.Name})
		})
		if err != nil {
			lg.Errorw("update project failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"project": p})
	}
}

func DeleteProject(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")

		var p models.Project
		if err := db.First(&p, "id = ?", projectID).Error; err != nil {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}

		userID := auth.UserID(r.Context())
		// Memberships cascade with the project; audit rows outlive it.
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := audit.Record(tx, p.ID, userID, audit.EventProjectDeleted,
				audit.EntityProject, p.ID, map[string]any{"name": p.Name}); err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", p.ID).Delete(&models.Membership{}).Error; err != nil {
				return err
			}
			return tx.Delete(&p).Error
		})
		if err != nil {
			lg.Errorw("delete project failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		lg.Infow("project deleted", "project_id", projectID, "user_id", userID)
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func GetProjectUsers(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")

		var memberships []models.Membership
		if err := db.Where("project_id = ?", projectID).Order("created_at asc").Find(&memberships).Error; err != nil {
			lg.Errorw("list project users failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ids := make([]string, 0, len(memberships))
		for _, m := range memberships {
			ids = append(ids, m.UserID)
		}
		users := make(map[string]models.User, len(ids))
		if len(ids) > 0 {
			var us []models.User
			if err := db.Where("id IN ?", ids).Find(&us).Error; err != nil {
				lg.Errorw("load users failed", "error", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			for _, u := range us {
				users[u.ID] = u
			}
		}

		items := make([]map[string]any, 0, len(memberships))
		for _, m := range memberships {
			u := users[m.UserID]
			items = append(items, map[string]any{
				"id":         u.ID,
				"name":       u.Name,
				"email":      u.Email,
				"role":       m.Role,
				"status":     m.Status,
				"created_at": m.CreatedAt,
			})
		}
		respondJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}
