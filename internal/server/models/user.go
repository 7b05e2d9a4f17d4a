package models

import (
	"fmt"

	"github.com/google/uuid"
)

// UserRole is informational only; no lending rule depends on it.
type UserRole string

const (
	RoleMember    UserRole = "MEMBER"
	RoleLibrarian UserRole = "LIBRARIAN"
	RoleAdmin     UserRole = "ADMIN"
)

// ParseUserRole validates s. An empty string yields RoleMember.
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case "":
		return RoleMember, nil
	case RoleMember, RoleLibrarian, RoleAdmin:
		return UserRole(s), nil
	default:
		return "", fmt.Errorf("unknown user role %q", s)
	}
}

type User struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Email string    `db:"email" json:"email"`
	Role  UserRole  `db:"role" json:"role"`
}

// NewUser returns a user with a fresh identifier. An empty role defaults to
// RoleMember.
func NewUser(name, email string, role UserRole) User {
	if role == "" {
		role = RoleMember
	}
	return User{
		ID:    uuid.New(),
		Name:  name,
		Email: email,
		Role:  role,
	}
}

// WithProfile returns a copy with the profile fields of other, keeping the
// receiver's ID.
func (u User) WithProfile(other User) User {
	other.ID = u.ID
	if other.Role == "" {
		other.Role = u.Role
	}
	return other
}
