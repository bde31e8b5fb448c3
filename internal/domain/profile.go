package domain

import "time"

// Profile models an internal staff identity with its granted permissions.
type Profile struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}
