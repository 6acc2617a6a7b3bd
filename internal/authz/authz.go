// Package authz is the pure role/permission evaluation layer shared by UI
// gating and route guards. It holds configuration tables, not behavior:
// new resources are added by extending the tables, not the evaluator.
package authz

import (
	"slices"

	"github.com/classtide/classtide/internal/models"
)

// Permission represents an authorized action.
type Permission string

const (
	PermCoursesView    Permission = "courses:view"
	PermCoursesManage  Permission = "courses:manage"
	PermGradesView     Permission = "grades:view"
	PermGradesManage   Permission = "grades:manage"
	PermSessionsJoin   Permission = "sessions:join"
	PermSessionsHost   Permission = "sessions:host"
	PermUsersManage    Permission = "users:manage"
	PermPaymentsView   Permission = "payments:view"
	PermPaymentsManage Permission = "payments:manage"
	PermAnalyticsView  Permission = "analytics:view"
	PermSettingsManage Permission = "settings:manage"
)

// RolePermissions maps account roles to allowed permissions.
var RolePermissions = map[models.Role][]Permission{
	models.RoleAdmin: {
		PermCoursesView,
		PermCoursesManage,
		PermGradesView,
		PermGradesManage,
		PermSessionsJoin,
		PermSessionsHost,
		PermUsersManage,
		PermPaymentsView,
		PermPaymentsManage,
		PermAnalyticsView,
		PermSettingsManage,
	},
	models.RoleTeacher: {
		PermCoursesView,
		PermCoursesManage,
		PermGradesView,
		PermGradesManage,
		PermSessionsJoin,
		PermSessionsHost,
		PermAnalyticsView,
	},
	models.RoleStudent: {
		PermCoursesView,
		PermGradesView,
		PermSessionsJoin,
		PermPaymentsView,
	},
}

// resourceActions maps resource -> action -> roles allowed to perform it.
// Admin passes every check regardless of table contents; see CanAccessResource.
var resourceActions = map[string]map[string][]models.Role{
	"courses": {
		"read":  {models.RoleStudent, models.RoleTeacher, models.RoleAdmin},
		"write": {models.RoleTeacher, models.RoleAdmin},
	},
	"grades": {
		"read":  {models.RoleStudent, models.RoleTeacher, models.RoleAdmin},
		"write": {models.RoleTeacher, models.RoleAdmin},
	},
	"live-sessions": {
		"read":  {models.RoleStudent, models.RoleTeacher, models.RoleAdmin},
		"write": {models.RoleTeacher, models.RoleAdmin},
	},
	"analytics": {
		"read": {models.RoleTeacher, models.RoleAdmin},
	},
	"payments": {
		"read":  {models.RoleStudent, models.RoleAdmin},
		"write": {models.RoleAdmin},
	},
	"users": {
		"read":  {models.RoleAdmin},
		"write": {models.RoleAdmin},
	},
	"settings": {
		"read":  {models.RoleAdmin},
		"write": {models.RoleAdmin},
	},
}

// PermissionsFor returns the permission set derived from a role. The session
// layer captures this at login/refresh time; it is immutable in between.
func PermissionsFor(role models.Role) []Permission {
	perms, ok := RolePermissions[role]
	if !ok {
		return nil
	}
	return slices.Clone(perms)
}

// HasPermission checks if a role grants a specific permission.
func HasPermission(role models.Role, perm Permission) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	return slices.Contains(perms, perm)
}

// HasAnyPermission checks if a role grants at least one of the listed
// permissions.
func HasAnyPermission(role models.Role, perms []Permission) bool {
	for _, p := range perms {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// CanAccessResource checks whether a role may perform an action on a
// resource. Admins always pass; unknown resources and actions always fail.
func CanAccessResource(role models.Role, resource, action string) bool {
	if role == models.RoleAdmin {
		return true
	}

	actions, ok := resourceActions[resource]
	if !ok {
		return false
	}
	roles, ok := actions[action]
	if !ok {
		return false
	}
	return slices.Contains(roles, role)
}
