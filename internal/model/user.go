package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles
const (
	RoleProductor = "productor"
	RoleTecnico   = "tecnico"
	RoleAdmin     = "admin"
)

type User struct {
	ID                uuid.UUID `json:"id"`
	FirstName         *string   `json:"firstname,omitempty"`
	LastName          *string   `json:"lastname,omitempty"`
	Email             string    `json:"email"`
	PasswordHash      *string   `json:"-"`
	Role              string    `json:"role"`
	IsDeleted         bool      `json:"is_deleted"`
	AuthProvider      string    `json:"auth_provider,omitempty"`
	IsVerified        bool      `json:"is_verified"`
	PreferredLanguage *string   `json:"preferred_language,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type UpdateUserRequest struct {
	FirstName         *string `json:"firstname,omitempty"`
	LastName          *string `json:"lastname,omitempty"`
	PreferredLanguage *string `json:"preferred_language,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type UpdateLanguageRequest struct {
	Language string `json:"language" validate:"required,oneof=es en"`
}
