package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/metrics"
	"github.com/bashabari/rental-backend/internal/middleware"
	"github.com/bashabari/rental-backend/internal/models"
	"github.com/bashabari/rental-backend/internal/services"
)

// AgreementHandler handles rent-agreement HTTP requests
type AgreementHandler struct {
	agreementService *services.AgreementService
	logger           *logrus.Logger
}

// NewAgreementHandler creates a new agreement handler
func NewAgreementHandler(agreementService *services.AgreementService, logger *logrus.Logger) *AgreementHandler {
	return &AgreementHandler{
		agreementService: agreementService,
		logger:           logger,
	}
}

// Sign handles POST /agreement/sign/:listing_id/. If the listing already
// has an agreement the response is 303 See Other pointing at it, mirroring
// the browser flow where a second sign attempt lands on the existing
// document.
func (h *AgreementHandler) Sign(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid listing ID",
		})
		return
	}

	var req models.SignAgreementRequest
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

	agreement, err := h.agreementService.Sign(listingID, userCtx.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAgreementExists):
			c.Redirect(http.StatusSeeOther, fmt.Sprintf("/agreement/view/%s/", listingID))
		case errors.Is(err, services.ErrOwnListing):
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: err.Error(),
				Code:    "OWN_LISTING",
			})
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Listing not found",
			})
		default:
			h.logger.WithError(err).Error("Failed to sign agreement")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to sign agreement",
			})
		}
		return
	}

	metrics.AgreementsSignedTotal.Inc()

	c.JSON(http.StatusCreated, agreement)
}

// Get handles GET /agreement/:listing_id/
func (h *AgreementHandler) Get(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid listing ID",
		})
		return
	}

	agreement, err := h.agreementService.GetByListingID(listingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "No agreement exists for this listing",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load agreement")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load agreement",
		})
		return
	}

	c.JSON(http.StatusOK, agreement)
}

// View handles GET /agreement/view/:listing_id/ and streams the document
// as a PDF
func (h *AgreementHandler) View(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid listing ID",
		})
		return
	}

	pdf, err := h.agreementService.RenderPDF(listingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "No agreement exists for this listing",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to render agreement PDF")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to render agreement",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rent_agreement_%s.pdf"`, listingID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
