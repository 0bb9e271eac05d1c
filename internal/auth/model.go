package auth

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user can hold. The role lives on the user row; fellowship leaders
// additionally carry the fellowship they lead.
const (
	RoleAdmin            = "admin"
	RoleFellowshipLeader = "fellowship_leader"
	RoleMember           = "member"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleFellowshipLeader || role == RoleMember
}

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Name         string
	Role         string
	FellowshipID *uuid.UUID // set for fellowship leaders and members of a fellowship
	ApiKeyPrefix string
	ApiKeyHash   string
	CreatedAt    time.Time
	RevokedAt    *time.Time
}

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID       uuid.UUID
	UserName     string
	Role         string
	FellowshipID *uuid.UUID
}

// IsAdmin reports whether the identity holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
