package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/bashabari/rental-backend/internal/models"
)

// AgreementRepository handles rent-agreement database operations
type AgreementRepository struct {
	db DB
}

// NewAgreementRepository creates a new agreement repository
func NewAgreementRepository(db DB) *AgreementRepository {
	return &AgreementRepository{
		db: db,
	}
}

// ExistsForListing reports whether an agreement already exists for the listing
func (r *AgreementRepository) ExistsForListing(listingID uuid.UUID) (bool, error) {
	var exists bool

	query := `
		SELECT EXISTS (SELECT 1 FROM rent_agreements WHERE listing_id = $1)
	`

	err := r.db.QueryRow(query, listingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check agreement existence: %w", err)
	}

	return exists, nil
}

// Create persists a new agreement. The unique constraint on listing_id
// backs the one-agreement-per-listing invariant.
func (r *AgreementRepository) Create(agreement *models.RentAgreement) error {
	if agreement.ID == uuid.Nil {
		agreement.ID = uuid.New()
	}
	agreement.SignedAt = time.Now()

	query := `
		INSERT INTO rent_agreements (
			id, listing_id, tenant_id, owner_id, rent_amount,
			duration_months, tenant_signature, owner_signature, signed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		query,
		agreement.ID,
		agreement.ListingID,
		agreement.TenantID,
		agreement.OwnerID,
		agreement.RentAmount,
		agreement.DurationMonths,
		agreement.TenantSignature,
		agreement.OwnerSignature,
		agreement.SignedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create agreement: %w", err)
	}

	return nil
}

// GetByListingID retrieves the agreement for a listing together with the
// usernames and listing title used in the rendered document
func (r *AgreementRepository) GetByListingID(listingID uuid.UUID) (*models.RentAgreement, error) {
	var agreement models.RentAgreement

	query := `
		SELECT ra.id, ra.listing_id, ra.tenant_id, ra.owner_id, ra.rent_amount,
		       ra.duration_months, ra.tenant_signature, ra.owner_signature, ra.signed_at,
		       t.username AS tenant_username, o.username AS owner_username,
		       l.title AS listing_title
		FROM rent_agreements ra
		JOIN listings l ON l.id = ra.listing_id
		JOIN users t ON t.id = ra.tenant_id
		JOIN users o ON o.id = ra.owner_id
		WHERE ra.listing_id = $1
	`

	err := r.db.Get(&agreement, query, listingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch agreement: %w", err)
	}

	return &agreement, nil
}
