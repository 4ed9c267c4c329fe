package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a per-project privilege level on a fixed total order.
type Role string

const (
	RoleViewer  Role = "VIEWER"
	RoleMember  Role = "MEMBER"
	RoleManager Role = "MANAGER"
	RoleOwner   Role = "OWNER"
)

var roleRank = map[Role]int{
	RoleViewer:  1,
	RoleMember:  2,
	RoleManager: 3,
	RoleOwner:   4,
}

func (r Role) Rank() int { return roleRank[r] }

func (r Role) Valid() bool { return roleRank[r] != 0 }

// AtLeast reports whether r meets the given role threshold. Unknown roles
// rank as zero and never pass.
func (r Role) AtLeast(min Role) bool { return roleRank[r] >= roleRank[min] }

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipInvited MembershipStatus = "invited"
)

type Severity string

const (
	Sev1 Severity = "SEV1"
	Sev2 Severity = "SEV2"
	Sev3 Severity = "SEV3"
	Sev4 Severity = "SEV4"
)

func (s Severity) Valid() bool {
	switch s {
	case Sev1, Sev2, Sev3, Sev4:
		return true
	}
	return false
}

type IncidentStatus string

const (
	StatusOpen       IncidentStatus = "OPEN"
	StatusMitigating IncidentStatus = "MITIGATING"
	StatusResolved   IncidentStatus = "RESOLVED"
)

func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusMitigating, StatusResolved:
		return true
	}
	return false
}

// UpdateType classifies timeline entries on an incident.
type UpdateType string

const (
	UpdateCreated           UpdateType = "CREATED"
	UpdateComment           UpdateType = "COMMENT"
	UpdateStatusChange      UpdateType = "STATUS_CHANGE"
	UpdateSeverityChange    UpdateType = "SEVERITY_CHANGE"
	UpdateTitleChange       UpdateType = "TITLE_CHANGE"
	UpdateDescriptionChange UpdateType = "DESCRIPTION_CHANGE"
	UpdateDeleted           UpdateType = "DELETED"
)

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `json:"-"`
	Unclaimed    bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Project struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Membership struct {
	ID            string           `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID     string           `gorm:"type:uuid;not null;uniqueIndex:idx_membership_project_user" json:"project_id"`
	UserID        string           `gorm:"type:uuid;not null;uniqueIndex:idx_membership_project_user;index" json:"user_id"`
	Role          Role             `gorm:"not null" json:"role"`
	Status        MembershipStatus `gorm:"not null;default:active" json:"status"`
	InviteMessage string           `json:"invite_message,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type Incident struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   string         `gorm:"type:uuid;not null;index" json:"project_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	Severity    Severity       `gorm:"not null" json:"severity"`
	Status      IncidentStatus `gorm:"not null" json:"status"`
	CreatedBy   string         `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (i *Incident) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// IncidentUpdate is one immutable timeline entry: a comment or one detected
// field change. Rows are only ever inserted.
type IncidentUpdate struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  string     `gorm:"type:uuid;not null;index" json:"project_id"`
	IncidentID string     `gorm:"type:uuid;not null;index:idx_update_incident_created" json:"incident_id"`
	Type       UpdateType `gorm:"not null" json:"type"`
	Message    string     `json:"message"`
	From       string     `json:"from,omitempty"`
	To         string     `json:"to,omitempty"`
	CreatedBy  string     `gorm:"type:uuid;not null" json:"created_by"`
	Creator    *User      `gorm:"foreignKey:CreatedBy" json:"-"`
	CreatedAt  time.Time  `gorm:"index:idx_update_incident_created" json:"created_at"`
}

func (u *IncidentUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type AuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID  string    `gorm:"type:uuid;not null;index" json:"project_id"`
	ActorID    string    `gorm:"type:uuid;not null" json:"actor_id"`
	Event      string    `gorm:"not null" json:"event"`
	EntityType string    `gorm:"not null" json:"entity_type"`
	EntityID   string    `gorm:"not null" json:"entity_id"`
	Metadata   JSONB     `gorm:"type:jsonb" json:"metadata"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskBacklog    TaskStatus = "BACKLOG"
	TaskCancelled  TaskStatus = "CANCELLED"
	TaskDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskBacklog, TaskCancelled, TaskDone:
		return true
	}
	return false
}

type TaskLabel string

const (
	LabelDocumentation TaskLabel = "DOCUMENTATION"
	LabelFeature       TaskLabel = "FEATURE"
	LabelBug           TaskLabel = "BUG"
)

func (l TaskLabel) Valid() bool {
	switch l {
	case LabelDocumentation, LabelFeature, LabelBug:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "HIGH"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityLow    TaskPriority = "LOW"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Task struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   string         `gorm:"type:uuid;not null;index" json:"project_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	Status      TaskStatus     `gorm:"not null;default:TODO" json:"status"`
	Label       TaskLabel      `gorm:"not null" json:"label"`
	Priority    TaskPriority   `gorm:"not null;default:MEDIUM" json:"priority"`
	CreatedBy   string         `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
