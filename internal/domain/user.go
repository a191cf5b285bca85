package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of user roles. Every authenticated request and
// every live stream connection carries exactly one role.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleMaintainer Role = "MAINTAINER"
	RoleReporter   Role = "REPORTER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMaintainer, RoleReporter:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the authenticated (user, role) pair attached to requests and
// stream connections. The role is a snapshot: a live connection keeps the
// role it was established with until the client reconnects.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
	Update(ctx context.Context, id uuid.UUID, fullName *string, role *Role) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
