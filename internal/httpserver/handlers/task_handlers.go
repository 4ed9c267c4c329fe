package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulseboard/internal/auth"
	"pulseboard/internal/models"
)

func findTask(db *gorm.DB, projectID, taskID string) (*models.Task, error) {
	var t models.Task
	err := db.Where("id = ? AND project_id = ?", taskID, projectID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func CreateTask(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Label       string `json:"label"`
			Priority    string `json:"priority"`
			Status      string `json:"status"`
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
		label := models.TaskLabel(strings.ToUpper(strings.TrimSpace(req.Label)))
		if !label.Valid() {
			respondError(w, http.StatusBadRequest, "valid label is required")
			return
		}
		// Unknown priority or status falls back to the default.
		priority := models.TaskPriority(strings.ToUpper(strings.TrimSpace(req.Priority)))
		if !priority.Valid() {
			priority = models.PriorityMedium
		}
		status := models.TaskStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		if !status.Valid() {
			status = models.TaskTodo
		}

		t := models.Task{
			ProjectID:   projectID,
			Title:       title,
			Description: req.Description,
			Label:       label,
			Priority:    priority,
			Status:      status,
			CreatedBy:   auth.UserID(r.Context()),
		}
		if err := db.Create(&t).Error; err != nil {
			lg.Errorw("create task failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{"task": t})
	}
}

func ListTasks(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")

		q := db.Where("project_id = ?", projectID)
		if s := r.URL.Query().Get("status"); s != "" {
			q = q.Where("status = ?", strings.ToUpper(s))
		}
		if s := r.URL.Query().Get("label"); s != "" {
			q = q.Where("label = ?", strings.ToUpper(s))
		}
		if s := r.URL.Query().Get("priority"); s != "" {
			q = q.Where("priority = ?", strings.ToUpper(s))
		}

		var tasks []models.Task
		if err := q.Order("created_at desc").Find(&tasks).Error; err != nil {
			lg.Errorw("list tasks failed", "project_id", projectID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"items": tasks})
	}
}

func GetTask(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := findTask(db, chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"))
		if err != nil {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"task": t})
	}
}

func UpdateTask(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		taskID := chi.URLParam(r, "taskID")
		var req struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			Status      *string `json:"status"`
			Label       *string `json:"label"`
			Priority    *string `json:"priority"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		t, err := findTask(db, projectID, taskID)
		if err != nil {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}

		changed := false
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				respondError(w, http.StatusBadRequest, "title cannot be empty")
				return
			}
			if title != t.Title {
				t.Title = title
				changed = true
			}
		}
		if req.Description != nil && *req.Description != t.Description {
			t.Description = *req.Description
			changed = true
		}
		if req.Status != nil {
			status := models.TaskStatus(*req.Status)
			if !status.Valid() {
				respondError(w, http.StatusBadRequest, "invalid status")
				return
			}
			if status != t.Status {
				t.Status = status
				changed = true
			}
		}
		if req.Label != nil {
			label := models.TaskLabel(*req.Label)
			if !label.Valid() {
				respondError(w, http.StatusBadRequest, "invalid label")
				return
			}
			if label != t.Label {
				t.Label = label
				changed = true
			}
		}
		if req.Priority != nil {
			priority := models.TaskPriority(*req.Priority)
			if !priority.Valid() {
				respondError(w, http.StatusBadRequest, "invalid priority")
				return
			}
			if priority != t.Priority {
				t.Priority = priority
				changed = true
			}
		}

		if !changed {
			respondError(w, http.StatusBadRequest, "no valid fields to update")
			return
		}

		t.UpdatedAt = time.Now()
		if err := db.Save(t).Error; err != nil {
			lg.Errorw("update task failed", "task_id", taskID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"task": t})
	}
}

func DeleteTask(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := findTask(db, chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"))
		if err != nil {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}
		if err := db.Delete(t).Error; err != nil {
			lg.Errorw("delete task failed", "task_id", t.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
