package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/pkg/sms"
)

// OTPLength is the length of the OTP code
const OTPLength = 6

var (
	// ErrOTPInvalid indicates the submitted OTP does not match the stored one
	ErrOTPInvalid = fmt.Errorf("invalid OTP code")

	// ErrNoOTPPending indicates no OTP is outstanding for the user
	ErrNoOTPPending = fmt.Errorf("no OTP pending for this user")

	// ErrAlreadyVerified indicates the phone number is already verified
	ErrAlreadyVerified = fmt.Errorf("phone number is already verified")
)

// OTPService issues and verifies phone-verification codes. A code stays
// valid until it is either verified or replaced by a resend; resending is
// the invalidation mechanism.
type OTPService struct {
	db      database.DB
	gateway sms.Gateway
	logger  *logrus.Logger
}

// NewOTPService creates a new OTP service
func NewOTPService(db database.DB, gateway sms.Gateway, logger *logrus.Logger) *OTPService {
	return &OTPService{
		db:      db,
		gateway: gateway,
		logger:  logger,
	}
}

// Issue generates a fresh 6-digit code, stores it on the user's profile
// (replacing any previous code) and sends it to the profile's phone number
func (s *OTPService) Issue(userID uuid.UUID) (string, error) {
	otp, err := generateRandomOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	var phoneNumber string
	query := `
		UPDATE user_profiles
		SET otp = $1, updated_at = $2
		WHERE user_id = $3
		RETURNING phone_number
	`

	err = s.db.QueryRow(query, otp, time.Now(), userID).Scan(&phoneNumber)
	if err != nil {
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	if err := s.gateway.Send(phoneNumber, fmt.Sprintf("Your BashaBari verification code is %s", otp)); err != nil {
		// The stored code survives a failed send; a resend can still deliver it.
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("Failed to send OTP SMS")
		return "", fmt.Errorf("failed to send OTP: %w", err)
	}

	s.logger.WithField("user_id", userID).Info("OTP issued")
	return otp, nil
}

// Verify compares the submitted code against the stored one. On a match
// the profile is marked verified and the code is cleared, so the same
// code cannot be replayed.
func (s *OTPService) Verify(userID uuid.UUID, otp string) error {
	var stored string
	var verified bool

	query := `
		SELECT otp, is_verified
		FROM user_profiles
		WHERE user_id = $1
	`

	err := s.db.QueryRow(query, userID).Scan(&stored, &verified)
	if err != nil {
		return fmt.Errorf("failed to get OTP record: %w", err)
	}

	if verified {
		return ErrAlreadyVerified
	}
	if stored == "" {
		return ErrNoOTPPending
	}
	if stored != otp {
		return ErrOTPInvalid
	}

	update := `
		UPDATE user_profiles
		SET is_verified = true, otp = '', updated_at = $1
		WHERE user_id = $2
	`

	if _, err := s.db.Exec(update, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to mark phone as verified: %w", err)
	}

	s.logger.WithField("user_id", userID).Info("Phone number verified")
	return nil
}

// Resend issues a new code. The previous code stops working because the
// profile only ever holds one.
func (s *OTPService) Resend(userID uuid.UUID) (string, error) {
	var verified bool

	query := `
		SELECT is_verified
		FROM user_profiles
		WHERE user_id = $1
	`

	err := s.db.QueryRow(query, userID).Scan(&verified)
	if err != nil {
		return "", fmt.Errorf("failed to get profile: %w", err)
	}
	if verified {
		return "", ErrAlreadyVerified
	}

	return s.Issue(userID)
}

// generateRandomOTP generates a cryptographically secure random code in
// [100000, 999999], so every code is exactly six digits
func generateRandomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
