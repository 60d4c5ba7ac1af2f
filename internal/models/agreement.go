package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RentAgreement is the tenancy contract for a listing.
// At most one agreement exists per listing (unique listing_id);
// a second sign attempt redirects to the existing one.
type RentAgreement struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ListingID       uuid.UUID  `json:"listing_id" db:"listing_id"`
	TenantID        uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	OwnerID         uuid.UUID  `json:"owner_id" db:"owner_id"`
	RentAmount      float64    `json:"rent_amount" db:"rent_amount"`
	DurationMonths  int        `json:"duration_months" db:"duration_months"`
	TenantSignature string     `json:"tenant_signature" db:"tenant_signature"`
	OwnerSignature  NullString `json:"owner_signature,omitempty" db:"owner_signature"`
	SignedAt        time.Time  `json:"signed_at" db:"signed_at"`

	TenantUsername NullString `json:"tenant_username,omitempty" db:"tenant_username"`
	OwnerUsername  NullString `json:"owner_username,omitempty" db:"owner_username"`
	ListingTitle   NullString `json:"listing_title,omitempty" db:"listing_title"`
}

// SignAgreementRequest is the payload for POST /agreement/sign/:listing_id/
type SignAgreementRequest struct {
	RentAmount      float64 `json:"rent_amount" binding:"required"`
	DurationMonths  int     `json:"duration_months" binding:"required"`
	TenantSignature string  `json:"tenant_signature" binding:"required"`
}

// Validate checks the agreement fields
func (r *SignAgreementRequest) Validate() error {
	if r.RentAmount <= 0 {
		return fmt.Errorf("rent amount must be positive")
	}
	if r.DurationMonths <= 0 {
		return fmt.Errorf("duration must be at least one month")
	}
	if r.TenantSignature == "" {
		return fmt.Errorf("tenant signature is required")
	}
	return nil
}
