package models

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// UserRole represents the role assigned to a user account
type UserRole string

const (
	RoleUser     UserRole = "USER"
	RoleOperator UserRole = "BUS_OPERATOR"
	RoleAdmin    UserRole = "ADMIN"
)

// User represents a registered account (traveler, operator or admin)
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// OperatorKey is a single-use key that entitles a registration to the
// BUS_OPERATOR role. Generated by an admin, consumed at registration time.
type OperatorKey struct {
	ID        string     `json:"id" db:"id"`
	Key       string     `json:"key" db:"key"`
	CreatedBy string     `json:"created_by" db:"created_by"`
	UsedBy    *string    `json:"used_by,omitempty" db:"used_by"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// RegisterRequest represents the request to create a new account
type RegisterRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	Phone       *string `json:"phone,omitempty"`
	OperatorKey *string `json:"operator_key,omitempty"`
}

// Validate validates the RegisterRequest
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("email must be a valid email address")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// LoginRequest represents the request to authenticate
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned from register and login
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}
