package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates the phone number is not 11 digits long
	ErrInvalidLength = errors.New("phone number must be exactly 11 digits")

	// ErrInvalidPrefix indicates the number does not use a Bangladeshi mobile prefix
	ErrInvalidPrefix = errors.New("phone number must start with 013, 014, 015, 016, 017, 018, or 019")

	// ErrInvalidFormat indicates the number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates the phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// validPrefixes contains the Bangladeshi mobile operator prefixes
var validPrefixes = []string{
	"013", // Grameenphone
	"014", // Banglalink
	"015", // Teletalk
	"016", // Airtel
	"017", // Grameenphone
	"018", // Robi
	"019", // Banglalink
}

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator handles phone number validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a Bangladeshi mobile number.
// Accepts 01712345678, +8801712345678, 8801712345678, and the same with
// spaces or dashes. Returns the sanitized local form (11 digits, 01...)
// and an error if invalid.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	// Normalize the country-code form to the local form
	if strings.HasPrefix(sanitized, "880") && len(sanitized) == 13 {
		sanitized = "0" + sanitized[3:]
	}

	if len(sanitized) != 11 {
		return "", ErrInvalidLength
	}

	if !v.IsValidPrefix(sanitized) {
		return "", ErrInvalidPrefix
	}

	return sanitized, nil
}

// Sanitize removes spaces, dashes, parentheses, and a leading plus sign
func (v *PhoneValidator) Sanitize(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "", "+", "")
	return replacer.Replace(strings.TrimSpace(phone))
}

// IsValidPrefix checks whether the number starts with a known operator prefix
func (v *PhoneValidator) IsValidPrefix(phone string) bool {
	for _, prefix := range validPrefixes {
		if strings.HasPrefix(phone, prefix) {
			return true
		}
	}
	return false
}
