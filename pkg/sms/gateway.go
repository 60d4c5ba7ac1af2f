package sms

import (
	"github.com/sirupsen/logrus"
)

// Gateway sends SMS messages to a single recipient
type Gateway interface {
	Send(phone, message string) error
}

// ConsoleGateway logs messages instead of sending them. Used in
// development so the verification flow works without an SMS provider.
type ConsoleGateway struct {
	logger *logrus.Logger
}

// NewConsoleGateway creates a console gateway
func NewConsoleGateway(logger *logrus.Logger) *ConsoleGateway {
	return &ConsoleGateway{logger: logger}
}

// Send logs the message at info level
func (g *ConsoleGateway) Send(phone, message string) error {
	g.logger.WithFields(logrus.Fields{
		"phone":   phone,
		"message": message,
	}).Info("SMS (console mode)")
	return nil
}
