package models

import "time"

// AdminRole represents the staff roles for the RBAC system.
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "Super Admin"
	RoleEditor     AdminRole = "Editor"
	RoleViewer     AdminRole = "Viewer"
)

// Valid reports whether r is a known role.
func (r AdminRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// AdminUser is a staff account.
type AdminUser struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         AdminRole  `db:"role" json:"role"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
}

// CreateAdminRequest provisions a new staff account.
type CreateAdminRequest struct {
	Username string    `json:"username" validate:"required,min=3,max=100"`
	Password string    `json:"password" validate:"required,min=6"`
	Role     AdminRole `json:"role" validate:"required,oneof='Super Admin' Editor Viewer"`
}
