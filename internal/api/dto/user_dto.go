package dto

import (
	"time"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload for POST /auth/password/change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProfileResponse is a user as shown to clients.
type ProfileResponse struct {
	ID               string      `json:"id"`
	Email            string      `json:"email,omitempty"`
	Nome             string      `json:"nome"`
	Role             domain.Role `json:"role"`
	BaseID           *string     `json:"base_id"`
	EquipeID         *string     `json:"equipe_id"`
	AcessoGerenteSCI bool        `json:"acesso_gerente_sci"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// CreateUserRequest payload for POST /admin/users.
type CreateUserRequest struct {
	Email            string      `json:"email"`
	Password         string      `json:"password"`
	Nome             string      `json:"nome"`
	Role             domain.Role `json:"role"`
	BaseID           *string     `json:"base_id"`
	EquipeID         *string     `json:"equipe_id"`
	AcessoGerenteSCI *bool       `json:"acesso_gerente_sci"`
}

// UpdateUserRequest payload for PUT /admin/users.
type UpdateUserRequest struct {
	ID               string      `json:"id"`
	Nome             string      `json:"nome"`
	Role             domain.Role `json:"role"`
	BaseID           *string     `json:"base_id"`
	EquipeID         *string     `json:"equipe_id"`
	Email            *string     `json:"email"`
	Password         *string     `json:"password"`
	AcessoGerenteSCI *bool       `json:"acesso_gerente_sci"`
}

// DeleteUserRequest payload for DELETE /admin/users.
type DeleteUserRequest struct {
	UserID string `json:"userId"`
}
