package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/bashabari/rental-backend/internal/models"
)

// ReviewRepository handles listing-review database operations
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{
		db: db,
	}
}

// Create stores a review for a listing
func (r *ReviewRepository) Create(review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()

	query := `
		INSERT INTO reviews (id, listing_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		query,
		review.ID,
		review.ListingID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// ListByListing retrieves reviews for a listing, newest first
func (r *ReviewRepository) ListByListing(listingID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review

	query := `
		SELECT rv.id, rv.listing_id, rv.user_id, u.username, rv.rating,
		       rv.comment, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.listing_id = $1
		ORDER BY rv.created_at DESC
	`

	err := r.db.Select(&reviews, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, nil
}
