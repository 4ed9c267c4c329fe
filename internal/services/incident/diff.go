// Package incident holds the incident lifecycle logic: which fields of an
// update actually changed, and the timeline/audit records each change emits.
package incident

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"pulseboard/internal/audit"
	"pulseboard/internal/models"
)

var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidSeverity = errors.New("invalid severity")
	ErrNoChanges       = errors.New("no valid fields to update")
)

// UpdateRequest carries the optional fields of a PATCH. Nil means "not
// provided"; a provided value equal to the current one is a silent no-op for
// that field.
type UpdateRequest struct {
	Title       *string
	Description *string
	Severity    *string
}

// FieldChange is one detected difference plus the records it produces.
type FieldChange struct {
	Type    models.UpdateType
	Event   string
	Message string
	From    string
	To      string
}

// previewLen bounds timeline messages and audit previews.
const previewLen = 80

func Preview(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	return string([]rune(s)[:previewLen])
}

// ApplyUpdate mutates inc in place and returns one FieldChange per field
// that actually differed. Returns ErrNoChanges when nothing differed, which
// callers must treat as a validation failure, not a success.
func ApplyUpdate(inc *models.Incident, req UpdateRequest) ([]FieldChange, error) {
	var changes []FieldChange

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		if title != inc.Title {
			changes = append(changes, FieldChange{
				Type:    models.UpdateTitleChange,
				Event:   audit.EventIncidentTitle,
				Message: title,
				From:    inc.Title,
				To:      title,
			})
			inc.Title = title
		}
	}

	if req.Description != nil && *req.Description != inc.Description {
		// from/to carry lengths, not the full text, to bound entry size.
		changes = append(changes, FieldChange{
			Type:    models.UpdateDescriptionChange,
			Event:   audit.EventIncidentDesc,
			Message: Preview(*req.Description),
			From:    strconv.Itoa(utf8.RuneCountInString(inc.Description)),
			To:      strconv.Itoa(utf8.RuneCountInString(*req.Description)),
		})
		inc.Description = *req.Description
	}

	if req.Severity != nil {
		sev := models.Severity(*req.Severity)
		if !sev.Valid() {
			return nil, ErrInvalidSeverity
		}
		if sev != inc.Severity {
			changes = append(changes, FieldChange{
				Type:  models.UpdateSeverityChange,
				Event: audit.EventIncidentSeverity,
				From:  string(inc.Severity),
				To:    string(sev),
			})
			inc.Severity = sev
		}
	}

	if len(changes) == 0 {
		return nil, ErrNoChanges
	}
	return changes, nil
}
