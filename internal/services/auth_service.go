package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/models"
	"github.com/bashabari/rental-backend/pkg/jwt"
	"github.com/bashabari/rental-backend/pkg/validator"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so login failures do not reveal which one happened
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")

	// ErrUsernameTaken indicates the username or email is already registered
	ErrUsernameTaken = fmt.Errorf("username or email already taken")
)

// TokenPair is the access/refresh pair handed out on register and login
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles registration and login
type AuthService struct {
	users      *database.UserRepository
	jwtService *jwt.Service
	phones     *validator.PhoneValidator
	otp        *OTPService
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	users *database.UserRepository,
	jwtService *jwt.Service,
	phones *validator.PhoneValidator,
	otp *OTPService,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		phones:     phones,
		otp:        otp,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates the account, its profile, and kicks off phone
// verification by sending the first OTP. The new account starts
// unverified; listing creation stays locked until the code is confirmed.
func (s *AuthService) Register(req *models.RegisterRequest) (*models.User, *TokenPair, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	phone, err := s.phones.Validate(req.PhoneNumber)
	if err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(req.Username, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, database.ErrDuplicateUser) {
			return nil, nil, ErrUsernameTaken
		}
		return nil, nil, err
	}

	if _, err := s.users.EnsureProfile(user.ID, phone); err != nil {
		return nil, nil, err
	}

	if _, err := s.otp.Issue(user.ID); err != nil {
		// The account exists; the user can request a resend from /verify/.
		s.logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("Initial OTP send failed")
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	return user, tokens, nil
}

// Login verifies the credentials and returns a fresh token pair
func (s *AuthService) Login(req *models.LoginRequest) (*models.User, *TokenPair, error) {
	user, err := s.users.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	access, err := s.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := s.jwtService.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
