package models

import (
	"time"
)

// User represents a registered member of the marketplace
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose password hash in JSON
	FullName     string    `json:"full_name" db:"full_name"`
	Bio          string    `json:"bio" db:"bio"`
	Location     string    `json:"location" db:"location"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserRegistration represents user registration request
type UserRegistration struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"` // bcrypt input limit
	FullName string `json:"full_name" validate:"required,max=255"`
	Bio      string `json:"bio" validate:"max=2000"`
	Location string `json:"location" validate:"max=255"`
}

// UserLogin represents user login request. Username accepts either the
// username or the email address.
type UserLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateUserParams contains write parameters for creating users
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Bio          string
	Location     string
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
	Location *string `json:"location" validate:"omitempty,max=255"`
}

// UserResponse represents user response (without sensitive data)
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Bio       string    `json:"bio"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse strips the credential from a user
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Bio:       u.Bio,
		Location:  u.Location,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    *UserResponse `json:"user"`
}
