package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulseboard/internal/auth"
	"pulseboard/internal/models"
)

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Name == "" || req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "name, email and password are required")
			return
		}
		if len(req.Password) < 8 {
			respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			lg.Errorw("hash password failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		var u models.User
		err = db.First(&u, "email = ?", req.Email).Error
		switch {
		case err == nil && !u.Unclaimed:
			respondError(w, http.StatusConflict, "email already in use")
			return
		case err == nil:
			// Invited-but-unregistered account: registering claims it.
			u.Name = req.Name
			u.PasswordHash = hash
			u.Unclaimed = false
			if err := db.Save(&u).Error; err != nil {
				lg.Errorw("claim account failed", "email", req.Email, "error", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
		case err == gorm.ErrRecordNotFound:
			u = models.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
			if err := db.Create(&u).Error; err != nil {
				lg.Errorw("create user failed", "email", req.Email, "error", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
		default:
			lg.Errorw("lookup user failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		tok, err := auth.Sign(u.ID)
		if err != nil {
			lg.Errorw("sign token failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		lg.Infow("user registered", "user_id", u.ID)
		respondJSON(w, http.StatusCreated, map[string]any{
			"user":        map[string]any{"id": u.ID, "name": u.Name, "email": u.Email},
			"accessToken": tok,
		})
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var u models.User
		err := db.First(&u, "email = ?", strings.TrimSpace(strings.ToLower(req.Email))).Error
		// Unclaimed accounts have no credential yet; same uniform error.
		if err != nil || u.Unclaimed {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		tok, err := auth.Sign(u.ID)
		if err != nil {
			lg.Errorw("sign token failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"user":        map[string]any{"id": u.ID, "name": u.Name, "email": u.Email},
			"accessToken": tok,
		})
	}
}

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := db.First(&u, "id = ?", auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"user": map[string]any{"id": u.ID, "name": u.Name, "email": u.Email},
		})
	}
}
