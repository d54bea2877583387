package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken        string    `json:"access_token"`
	ExpiresIn          int64     `json:"expires_in"`
	MustChangePassword bool      `json:"must_change_password"`
	User               UserView  `json:"user"`
	IssuedAt           time.Time `json:"issued_at"`
}

// SetupRequest creates the first super admin.
type SetupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// ChangePasswordRequest payload for replacing the current password.
type ChangePasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID             string   `json:"user_id"`
	SessionID          string   `json:"sid"`
	Role               UserRole `json:"role"`
	Email              string   `json:"email"`
	InstitutionID      string   `json:"institution_id,omitempty"`
	MustChangePassword bool     `json:"must_change_password"`
	jwt.RegisteredClaims
}
