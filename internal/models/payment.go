package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Rent payment statuses. Payments filed through the tenant flow are
// always persisted as paid (self-reported, no gateway verification);
// pending and late exist for externally managed records.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusLate    = "late"
)

// RentPayment is one monthly rent record in the ledger
type RentPayment struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ListingID     uuid.UUID  `json:"listing_id" db:"listing_id"`
	ListingTitle  NullString `json:"listing_title,omitempty" db:"listing_title"`
	TenantID      uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	TenantName    NullString `json:"tenant_name,omitempty" db:"tenant_name"`
	Amount        float64    `json:"amount" db:"amount"`
	Month         time.Time  `json:"month" db:"month"` // first day of the month paid for
	Status        string     `json:"status" db:"status"`
	PaymentMethod NullString `json:"payment_method,omitempty" db:"payment_method"` // e.g. "bKash", "Cash"
	TransactionID NullString `json:"transaction_id,omitempty" db:"transaction_id"`
	PaidOn        time.Time  `json:"paid_on" db:"paid_on"`
}

// PayRentRequest is the payload for POST /rent/pay/:listing_id/.
// Any submitted status is ignored; the record is stored as paid.
type PayRentRequest struct {
	Amount        float64 `json:"amount" binding:"required"`
	Month         string  `json:"month" binding:"required"` // YYYY-MM
	PaymentMethod string  `json:"payment_method"`
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"` // accepted but ignored
}

// Validate checks amount and month format
func (r *PayRentRequest) Validate() error {
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if _, err := time.Parse("2006-01", r.Month); err != nil {
		return fmt.Errorf("month must be in YYYY-MM format")
	}
	return nil
}

// MonthDate returns the month as the first day of that calendar month
func (r *PayRentRequest) MonthDate() time.Time {
	t, _ := time.Parse("2006-01", r.Month)
	return t
}
