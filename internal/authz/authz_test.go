package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtide/classtide/internal/models"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name           string
		role           models.Role
		permission     Permission
		expectedResult bool
	}{
		{
			name:           "admin can manage settings",
			role:           models.RoleAdmin,
			permission:     PermSettingsManage,
			expectedResult: true,
		},
		{
			name:           "admin can manage users",
			role:           models.RoleAdmin,
			permission:     PermUsersManage,
			expectedResult: true,
		},
		{
			name:           "teacher can manage courses",
			role:           models.RoleTeacher,
			permission:     PermCoursesManage,
			expectedResult: true,
		},
		{
			name:           "teacher can manage grades",
			role:           models.RoleTeacher,
			permission:     PermGradesManage,
			expectedResult: true,
		},
		{
			name:           "teacher can host live sessions",
			role:           models.RoleTeacher,
			permission:     PermSessionsHost,
			expectedResult: true,
		},
		{
			name:           "teacher cannot manage users",
			role:           models.RoleTeacher,
			permission:     PermUsersManage,
			expectedResult: false,
		},
		{
			name:           "teacher cannot manage settings",
			role:           models.RoleTeacher,
			permission:     PermSettingsManage,
			expectedResult: false,
		},
		{
			name:           "student can view courses",
			role:           models.RoleStudent,
			permission:     PermCoursesView,
			expectedResult: true,
		},
		{
			name:           "student can join live sessions",
			role:           models.RoleStudent,
			permission:     PermSessionsJoin,
			expectedResult: true,
		},
		{
			name:           "student cannot manage courses",
			role:           models.RoleStudent,
			permission:     PermCoursesManage,
			expectedResult: false,
		},
		{
			name:           "student cannot view analytics",
			role:           models.RoleStudent,
			permission:     PermAnalyticsView,
			expectedResult: false,
		},
		{
			name:           "unknown role has nothing",
			role:           models.Role("ghost"),
			permission:     PermCoursesView,
			expectedResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedResult, HasPermission(tt.role, tt.permission))
		})
	}
}

func TestHasAnyPermission(t *testing.T) {
	assert.True(t, HasAnyPermission(models.RoleStudent, []Permission{PermUsersManage, PermCoursesView}))
	assert.False(t, HasAnyPermission(models.RoleStudent, []Permission{PermUsersManage, PermSettingsManage}))
	assert.False(t, HasAnyPermission(models.RoleStudent, nil))
}

func TestCanAccessResource(t *testing.T) {
	tests := []struct {
		name           string
		role           models.Role
		resource       string
		action         string
		expectedResult bool
	}{
		{
			name:           "admin writes settings",
			role:           models.RoleAdmin,
			resource:       "settings",
			action:         "write",
			expectedResult: true,
		},
		{
			name:           "teacher cannot write settings",
			role:           models.RoleTeacher,
			resource:       "settings",
			action:         "write",
			expectedResult: false,
		},
		{
			name:           "student cannot write settings",
			role:           models.RoleStudent,
			resource:       "settings",
			action:         "write",
			expectedResult: false,
		},
		{
			name:           "student reads courses",
			role:           models.RoleStudent,
			resource:       "courses",
			action:         "read",
			expectedResult: true,
		},
		{
			name:           "student cannot write grades",
			role:           models.RoleStudent,
			resource:       "grades",
			action:         "write",
			expectedResult: false,
		},
		{
			name:           "teacher writes grades",
			role:           models.RoleTeacher,
			resource:       "grades",
			action:         "write",
			expectedResult: true,
		},
		{
			name:           "admin passes on unknown resource",
			role:           models.RoleAdmin,
			resource:       "does-not-exist",
			action:         "write",
			expectedResult: true,
		},
		{
			name:           "teacher fails on unknown resource",
			role:           models.RoleTeacher,
			resource:       "does-not-exist",
			action:         "read",
			expectedResult: false,
		},
		{
			name:           "unknown action fails",
			role:           models.RoleTeacher,
			resource:       "courses",
			action:         "destroy",
			expectedResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedResult, CanAccessResource(tt.role, tt.resource, tt.action))
		})
	}
}

func TestPermissionsFor(t *testing.T) {
	perms := PermissionsFor(models.RoleStudent)
	require.NotEmpty(t, perms)

	// The returned slice is a copy: mutating it must not poison the table.
	perms[0] = PermSettingsManage
	assert.False(t, HasPermission(models.RoleStudent, PermSettingsManage))

	assert.Nil(t, PermissionsFor(models.Role("ghost")))
}
