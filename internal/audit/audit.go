// Package audit appends immutable, project-scoped records of state-changing
// actions. Entries are never read back by business logic, only surfaced to
// viewers through the audit endpoint.
package audit

import (
	"encoding/json"

	"gorm.io/gorm"

	"pulseboard/internal/models"
)

const (
	EventProjectCreated   = "PROJECT_CREATED"
	EventProjectUpdated   = "PROJECT_UPDATED"
	EventProjectDeleted   = "PROJECT_DELETED"
	EventMemberInvited    = "MEMBER_INVITED"
	EventInviteAccepted   = "INVITE_ACCEPTED"
	EventInviteDeclined   = "INVITE_DECLINED"
	EventMemberLeft       = "MEMBER_LEFT"
	EventIncidentCreated  = "INCIDENT_CREATED"
	EventIncidentComment  = "INCIDENT_COMMENT_ADDED"
	EventIncidentStatus   = "INCIDENT_STATUS_CHANGED"
	EventIncidentSeverity = "INCIDENT_SEVERITY_CHANGED"
	EventIncidentTitle    = "INCIDENT_TITLE_CHANGED"
	EventIncidentDesc     = "INCIDENT_DESCRIPTION_CHANGED"
	EventIncidentDeleted  = "INCIDENT_DELETED"
)

const (
	EntityProject    = "PROJECT"
	EntityMembership = "MEMBERSHIP"
	EntityIncident   = "INCIDENT"
)

// Record inserts one audit entry. Call it on the same transaction as the
// mutation it describes so both commit or neither does.
func Record(tx *gorm.DB, projectID, actorID, event, entityType, entityID string, metadata map[string]any) error {
	meta := models.JSONB("{}")
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		meta = models.JSONB(b)
	}
	entry := models.AuditLog{
		ProjectID:  projectID,
		ActorID:    actorID,
		Event:      event,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   meta,
	}
	return tx.Create(&entry).Error
}
