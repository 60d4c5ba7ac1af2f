package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/middleware"
	"github.com/bashabari/rental-backend/internal/models"
)

// ReviewHandler handles listing-review HTTP requests
type ReviewHandler struct {
	reviews  *database.ReviewRepository
	listings *database.ListingRepository
	logger   *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(
	reviews *database.ReviewRepository,
	listings *database.ListingRepository,
	logger *logrus.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		listings: listings,
		logger:   logger,
	}
}

// Create handles POST /listings/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid listing ID",
		})
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if _, err := h.listings.GetByID(listingID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Listing not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load listing")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load listing",
		})
		return
	}

	review := &models.Review{
		ListingID: listingID,
		UserID:    userCtx.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := h.reviews.Create(review); err != nil {
		h.logger.WithError(err).Error("Failed to create review")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create review",
		})
		return
	}

	c.JSON(http.StatusCreated, review)
}

// List handles GET /listings/:id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid listing ID",
		})
		return
	}

	reviews, err := h.reviews.ListByListing(listingID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list reviews")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load reviews",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
	})
}
