package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/models"
	"github.com/bashabari/rental-backend/pkg/pdfgen"
)

var (
	// ErrAgreementExists indicates the listing already has an agreement;
	// the handler redirects the caller to the existing document
	ErrAgreementExists = fmt.Errorf("agreement already exists for this listing")

	// ErrOwnListing indicates the tenant tried to sign their own listing
	ErrOwnListing = fmt.Errorf("owners cannot sign an agreement for their own listing")
)

// AgreementService signs tenancy agreements and renders their documents
type AgreementService struct {
	agreements *database.AgreementRepository
	listings   *database.ListingRepository
	logger     *logrus.Logger
}

// NewAgreementService creates a new agreement service
func NewAgreementService(
	agreements *database.AgreementRepository,
	listings *database.ListingRepository,
	logger *logrus.Logger,
) *AgreementService {
	return &AgreementService{
		agreements: agreements,
		listings:   listings,
		logger:     logger,
	}
}

// Sign creates the single agreement a listing can carry. If one already
// exists the sign attempt fails with ErrAgreementExists so the caller
// can be redirected to it.
func (s *AgreementService) Sign(listingID, tenantID uuid.UUID, req *models.SignAgreementRequest) (*models.RentAgreement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	listing, err := s.listings.GetByID(listingID)
	if err != nil {
		return nil, err
	}

	if listing.OwnerID == tenantID {
		return nil, ErrOwnListing
	}

	exists, err := s.agreements.ExistsForListing(listingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAgreementExists
	}

	agreement := &models.RentAgreement{
		ListingID:       listingID,
		TenantID:        tenantID,
		OwnerID:         listing.OwnerID,
		RentAmount:      req.RentAmount,
		DurationMonths:  req.DurationMonths,
		TenantSignature: req.TenantSignature,
	}

	if err := s.agreements.Create(agreement); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"agreement_id": agreement.ID,
		"listing_id":   listingID,
		"tenant_id":    tenantID,
	}).Info("Rent agreement signed")

	return s.agreements.GetByListingID(listingID)
}

// GetByListingID retrieves the agreement for a listing
func (s *AgreementService) GetByListingID(listingID uuid.UUID) (*models.RentAgreement, error) {
	return s.agreements.GetByListingID(listingID)
}

// BuildDocument produces the text lines of the agreement document in
// page order. Kept separate from rendering so the content is testable
// without decoding a PDF.
func BuildDocument(a *models.RentAgreement) []pdfgen.Instruction {
	lines := []string{
		"Rent Agreement",
		"",
		fmt.Sprintf("Listing: %s", a.ListingTitle.String),
		fmt.Sprintf("Tenant: %s", a.TenantUsername.String),
		fmt.Sprintf("Owner: %s", a.OwnerUsername.String),
		fmt.Sprintf("Monthly Rent: BDT %.2f", a.RentAmount),
		fmt.Sprintf("Duration: %d months", a.DurationMonths),
		fmt.Sprintf("Signed At: %s", a.SignedAt.Format("2006-01-02 15:04")),
		"",
		fmt.Sprintf("Tenant Signature: %s", a.TenantSignature),
	}
	if a.OwnerSignature.Valid {
		lines = append(lines, fmt.Sprintf("Owner Signature: %s", a.OwnerSignature.String))
	}

	instructions := make([]pdfgen.Instruction, 0, len(lines))
	y := 72.0
	for _, line := range lines {
		instructions = append(instructions, pdfgen.Instruction{X: 72, Y: y, Text: line})
		y += 20
	}
	return instructions
}

// RenderPDF renders the agreement document for download
func (s *AgreementService) RenderPDF(listingID uuid.UUID) ([]byte, error) {
	agreement, err := s.agreements.GetByListingID(listingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load agreement: %w", err)
	}

	return pdfgen.Render(BuildDocument(agreement))
}
