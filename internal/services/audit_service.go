package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/utils"
)

// AuditService records login attempts for security review. Failures are
// recorded too; the user_id stays null when the username does not exist.
type AuditService struct {
	db     database.DB
	logger *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB, logger *logrus.Logger) *AuditService {
	return &AuditService{
		db:     db,
		logger: logger,
	}
}

// LogLogin records a login attempt. Audit failures are logged but never
// surfaced to the caller; they must not fail the login itself.
func (s *AuditService) LogLogin(userID *uuid.UUID, username string, success bool, ipAddress, userAgent string) {
	device := utils.ParseUserAgent(userAgent)

	query := `
		INSERT INTO login_events (id, user_id, username, success, ip_address, device)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(query, uuid.New(), userID, username, success, ipAddress, device.Summary())
	if err != nil {
		s.logger.WithError(fmt.Errorf("failed to record login event: %w", err)).Error("Audit write failed")
	}

	s.logger.WithFields(logrus.Fields{
		"username": username,
		"success":  success,
		"ip":       ipAddress,
		"device":   device.Summary(),
	}).Info("Login attempt")
}
