package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/bashabari/rental-backend/internal/models"
)

// UserRepository handles user and user-profile database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// ErrDuplicateUser indicates the username or email is already taken
var ErrDuplicateUser = fmt.Errorf("username or email already taken")

// CreateUser creates a new user account
func (r *UserRepository) CreateUser(username, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// EnsureProfile creates the user's profile if it does not exist yet.
// Called explicitly right after account creation; the ON CONFLICT clause
// also heals accounts that somehow lost their profile.
func (r *UserRepository) EnsureProfile(userID uuid.UUID, phoneNumber string) (*models.UserProfile, error) {
	query := `
		INSERT INTO user_profiles (id, user_id, phone_number, is_verified, otp, created_at, updated_at)
		VALUES ($1, $2, $3, false, '', $4, $4)
		ON CONFLICT (user_id) DO NOTHING
	`

	now := time.Now()
	_, err := r.db.Exec(query, uuid.New(), userID, phoneNumber, now)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	return r.GetProfileByUserID(userID)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	err := r.db.Get(&user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// GetProfileByUserID retrieves the profile attached to a user
func (r *UserRepository) GetProfileByUserID(userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile

	query := `
		SELECT id, user_id, phone_number, is_verified, otp, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`

	err := r.db.Get(&profile, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &profile, nil
}

// IsPhoneVerified reports whether the user's profile is phone-verified
func (r *UserRepository) IsPhoneVerified(userID uuid.UUID) (bool, error) {
	var verified bool

	query := `
		SELECT is_verified
		FROM user_profiles
		WHERE user_id = $1
	`

	err := r.db.QueryRow(query, userID).Scan(&verified)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to check phone verification: %w", err)
	}

	return verified, nil
}
