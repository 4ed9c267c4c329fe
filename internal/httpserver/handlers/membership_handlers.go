package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulseboard/internal/audit"
	"pulseboard/internal/auth"
	"pulseboard/internal/models"
)

func InviteMember(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		var req struct {
			Email   string       `json:"email"`
			Role    *models.Role `json:"role"`
			Message string       `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		email := strings.TrimSpace(strings.ToLower(req.Email))
		if email == "" {
			respondError(w, http.StatusBadRequest, "email is required")
			return
		}
		role := models.RoleViewer
		if req.Role != nil {
			role = *req.Role
		}
		if !role.Valid() {
			respondError(w, http.StatusBadRequest, "invalid role")
			return
		}

		var target models.User
		err := db.First(&target, "email = ?", email).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown email gets an unclaimed account the invitee can claim
			// by registering later.
			target = models.User{Email: email, Unclaimed: true}
			if err := db.Create(&target).Error; err != nil {
				lg.Errorw("create unclaimed user failed", "error", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
		} else if err != nil {
			lg.Errorw("lookup user failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		var existing models.Membership
		if err := db.Where("project_id = ? AND user_id = ?", projectID, target.ID).First(&existing).Error; err == nil {
			respondError(w, http.StatusConflict, "user is already a member of this project")
			return
		}

		actorID := auth.UserID(r.Context())
		m := models.Membership{
			ProjectID:     projectID,
			UserID:        target.ID,
			Role:          role,
			Status:        models.MembershipInvited,
			InviteMessage: strings.TrimSpace(req.Message),
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			return audit.Record(tx, projectID, actorID, audit.EventMemberInvited,
				audit.EntityMembership, m.ID, map[string]any{"email": email, "role": role})
		})
		if err != nil {
			lg.Errorw("invite member failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		lg.Infow("member invited", "project_id", projectID, "user_id", target.ID, "role", role)
		respondJSON(w, http.StatusCreated, map[string]any{"membership": m})
	}
}

func AcceptInvite(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		userID := auth.UserID(r.Context())

		var m models.Membership
		err := db.Where("project_id = ? AND user_id = ? AND status = ?",
			projectID, userID, models.MembershipInvited).First(&m).Error
		if err != nil {
			respondError(w, http.StatusNotFound, "no pending invite")
			return
		}
		m.Status = models.MembershipActive
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&m).Error; err != nil {
				return err
			}
			return audit.Record(tx, projectID, userID, audit.EventInviteAccepted,
				audit.EntityMembership, m.ID, nil)
		})
		if err != nil {
			lg.Errorw("accept invite failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"membership": m})
	}
}

func DeclineInvite(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		userID := auth.UserID(r.Context())

		var m models.Membership
		err := db.Where("project_id = ? AND user_id = ? AND status = ?",
			projectID, userID, models.MembershipInvited).First(&m).Error
		if err != nil {
			respondError(w, http.StatusNotFound, "no pending invite")
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&m).Error; err != nil {
				return err
			}
			return audit.Record(tx, projectID, userID, audit.EventInviteDeclined,
				audit.EntityMembership, m.ID, nil)
		})
		if err != nil {
			lg.Errorw("decline invite failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"declined": true})
	}
}

func LeaveProject(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		userID := auth.UserID(r.Context())

		var m models.Membership
		err := db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&m).Error
		if err != nil {
			respondError(w, http.StatusNotFound, "not a member of this project")
			return
		}

		// A project must keep at least one active owner.
		if m.Role == models.RoleOwner && m.Status == models.MembershipActive {
			var owners int64
			if err := db.Model(&models.Membership{}).
				Where("project_id = ? AND role = ? AND status = ?",
					projectID, models.RoleOwner, models.MembershipActive).
				Count(&owners).Error; err != nil {
				lg.Errorw("count owners failed", "project_id", projectID, "error", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if owners <= 1 {
				respondError(w, http.StatusForbidden, "cannot leave as the only owner")
				return
			}
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&m).Error; err != nil {
				return err
			}
			return audit.Record(tx, projectID, userID, audit.EventMemberLeft,
				audit.EntityMembership, m.ID, nil)
		})
		if err != nil {
			lg.Errorw("leave project failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		lg.Infow("member left", "project_id", projectID, "user_id", userID)
		respondJSON(w, http.StatusOK, map[string]any{"left": true})
	}
}
