package domain

import (
	"context"
	"strings"
	"time"
)

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleRecruiter
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=200,valid_name"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=candidate recruiter"`
}

func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Role = strings.TrimSpace(r.Role)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// NormalizeEmail is applied before every email lookup so addresses match regardless of case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserRepository interface {
	// Create returns a Conflict apperror when the email is taken.
	Create(ctx context.Context, user *User) error
	// GetByID and GetByEmail return nil, nil when no user matches.
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type AuthUsecase interface {
	Signup(ctx context.Context, req SignupRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	// EnsureUserExists registers a user first seen through an external identity provider.
	EnsureUserExists(ctx context.Context, user *User) (*User, error)
}
