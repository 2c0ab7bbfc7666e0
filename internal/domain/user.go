package domain

import "time"

// User is an account of the HR system. Users are soft-deleted.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Role      Role      `json:"role" validate:"required,oneof=admin hr employee"`
	Photo     string    `json:"photo,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// Credentials hold the password hash of a user outside of the user document.
type Credentials struct {
	UserID       string
	PasswordHash string
	UpdatedAt    time.Time
}
