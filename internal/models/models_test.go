package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleRankOrdering(t *testing.T) {
	assert.True(t, RoleViewer.Rank() < RoleMember.Rank())
	assert.True(t, RoleMember.Rank() < RoleManager.Rank())
	assert.True(t, RoleManager.Rank() < RoleOwner.Rank())
}

func TestRoleAtLeast(t *testing.T) {
	roles := []Role{RoleViewer, RoleMember, RoleManager, RoleOwner}
	for i, r := range roles {
		for j, min := range roles {
			got := r.AtLeast(min)
			assert.Equal(t, i >= j, got, "role %s against threshold %s", r, min)
		}
	}
}

func TestRoleAtLeastRejectsUnknown(t *testing.T) {
	// "no membership" and garbage both rank zero and fail every threshold.
	for _, min := range []Role{RoleViewer, RoleMember, RoleManager, RoleOwner} {
		assert.False(t, Role("").AtLeast(min))
		assert.False(t, Role("ADMIN").AtLeast(min))
	}
	assert.False(t, Role("").Valid())
	assert.False(t, Role("admin").Valid())
	assert.True(t, RoleOwner.Valid())
}

func TestSeverityValid(t *testing.T) {
	for _, s := range []Severity{Sev1, Sev2, Sev3, Sev4} {
		assert.True(t, s.Valid())
	}
	assert.False(t, Severity("SEV5").Valid())
	assert.False(t, Severity("sev1").Valid())
	assert.False(t, Severity("").Valid())
}

func TestIncidentStatusValid(t *testing.T) {
	for _, s := range []IncidentStatus{StatusOpen, StatusMitigating, StatusResolved} {
		assert.True(t, s.Valid())
	}
	// INVESTIGATING was dropped from the canonical enum.
	assert.False(t, IncidentStatus("INVESTIGATING").Valid())
	assert.False(t, IncidentStatus("").Valid())
}

func TestTaskEnums(t *testing.T) {
	assert.True(t, TaskStatus("IN_PROGRESS").Valid())
	assert.False(t, TaskStatus("WAITING").Valid())
	assert.True(t, TaskLabel("BUG").Valid())
	assert.False(t, TaskLabel("bug").Valid())
	assert.True(t, TaskPriority("LOW").Valid())
	assert.False(t, TaskPriority("URGENT").Valid())
}
