package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserProfile holds the phone-verification state attached to a user.
// Exactly one profile exists per user; EnsureProfile creates it if missing.
type UserProfile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	IsVerified  bool      `json:"is_verified" db:"is_verified"`
	OTP         string    `json:"-" db:"otp"` // Never expose in JSON
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest is the payload for POST /register/
type RegisterRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// Validate checks the register request fields.
// Phone number format is checked separately by the phone validator.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if len(r.Username) > 150 {
		return fmt.Errorf("username must be at most 150 characters")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("email address is not valid")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// LoginRequest is the payload for POST /login/
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// VerifyOTPRequest is the payload for POST /verify/
type VerifyOTPRequest struct {
	OTP string `json:"otp" binding:"required"`
}
