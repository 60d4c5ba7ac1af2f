package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Review is a tenant's rating of a listing
type Review struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ListingID uuid.UUID  `json:"listing_id" db:"listing_id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Username  NullString `json:"username,omitempty" db:"username"`
	Rating    int        `json:"rating" db:"rating"`
	Comment   string     `json:"comment" db:"comment"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// CreateReviewRequest is the payload for POST /listings/:id/reviews
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

// Validate checks the rating range
func (r *CreateReviewRequest) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}
