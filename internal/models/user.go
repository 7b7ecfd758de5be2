package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role within (or across) organizations.
type Role string

const (
	RoleRequester   Role = "requester"
	RoleMaintenance Role = "maintenance"
	RoleAdmin       Role = "admin"
	RoleSuperAdmin  Role = "super_admin"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleRequester, RoleMaintenance, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// MaintenanceCapable reports whether a user with this role can be assigned
// to work a request.
func (r Role) MaintenanceCapable() bool {
	return r == RoleMaintenance || r == RoleAdmin
}

// User represents a platform user. OrganizationID is nil only for super_admin.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Password       string     `json:"-"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Role           Role       `json:"role"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FullName returns the display name.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Role           Role       `json:"role"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		CreatedAt:      u.CreatedAt,
	}
}
