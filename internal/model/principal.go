package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleOfficer    UserRole = "officer"
	UserRoleSupervisor UserRole = "supervisor"
	UserRoleManager    UserRole = "manager"
	UserRoleAdmin      UserRole = "admin"
)

// AdminRoles are the roles an Admin account may hold.
func AdminRoles() []UserRole {
	return []UserRole{UserRoleSupervisor, UserRoleManager, UserRoleAdmin}
}

func (r UserRole) IsAdminRole() bool {
	for _, role := range AdminRoles() {
		if r == role {
			return true
		}
	}
	return false
}

type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsOfficer() bool {
	return p.Role == UserRoleOfficer
}

// IsAdmin is true for every dashboard role.
func (p Principal) IsAdmin() bool {
	return p.Role.IsAdminRole()
}
