package dto

import (
	"time"

	"github.com/misd-it/misdesk/internal/domain"
)

// SignUpRequest payload for register and team-member creation.
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   ProfileResponse `json:"profile"`
}

// ProfileResponse represents a staff identity.
type ProfileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Roles       []string  `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpdateRolesRequest payload.
type UpdateRolesRequest struct {
	Roles []string `json:"role"`
}

// NameRequest is the shared department/filer payload.
type NameRequest struct {
	Name string `json:"name"`
}

// FromProfile maps a profile to its response shape.
func FromProfile(profile *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          profile.ID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Roles:       profile.Roles,
		CreatedAt:   profile.CreatedAt,
	}
}
