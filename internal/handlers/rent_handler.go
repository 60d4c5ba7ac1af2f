package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/metrics"
	"github.com/bashabari/rental-backend/internal/middleware"
	"github.com/bashabari/rental-backend/internal/models"
)

// RentHandler handles rent-ledger HTTP requests
type RentHandler struct {
	payments *database.PaymentRepository
	listings *database.ListingRepository
	logger   *logrus.Logger
}

// NewRentHandler creates a new rent handler
func NewRentHandler(
	payments *database.PaymentRepository,
	listings *database.ListingRepository,
	logger *logrus.Logger,
) *RentHandler {
	return &RentHandler{
		payments: payments,
		listings: listings,
		logger:   logger,
	}
}

// Pay handles POST /rent/pay/:listing_id/. The tenant self-reports a
// payment; any submitted status is ignored and the record is stored as
// paid.
func (h *RentHandler) Pay(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid listing ID",
		})
		return
	}

	var req models.PayRentRequest
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

	payment := &models.RentPayment{
		ListingID:     listingID,
		TenantID:      userCtx.UserID,
		Amount:        req.Amount,
		Month:         req.MonthDate(),
		PaymentMethod: models.NewNullString(req.PaymentMethod),
		TransactionID: models.NewNullString(req.TransactionID),
	}

	if err := h.payments.Create(payment); err != nil {
		h.logger.WithError(err).Error("Failed to record rent payment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to record payment",
		})
		return
	}

	metrics.RentPaymentsTotal.Inc()

	c.JSON(http.StatusCreated, payment)
}

// MyHistory handles GET /rent/my-history/, the payments the tenant filed
func (h *RentHandler) MyHistory(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	payments, err := h.payments.ListByTenant(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load rent history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load rent history",
		})
		return
	}

	c.JSON(http.StatusOK, ledgerResponse(payments))
}

// Manage handles GET /rent/manage/, the payments received across the
// acting user's listings
func (h *RentHandler) Manage(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	payments, err := h.payments.ListByOwner(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load rent ledger")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load rent ledger",
		})
		return
	}

	c.JSON(http.StatusOK, ledgerResponse(payments))
}

func ledgerResponse(payments []models.RentPayment) gin.H {
	var total float64
	for _, p := range payments {
		total += p.Amount
	}

	return gin.H{
		"payments":   payments,
		"count":      len(payments),
		"total_paid": total,
	}
}

// Export handles GET /rent/manage/export and streams the owner's ledger
// as an XLSX workbook
func (h *RentHandler) Export(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	payments, err := h.payments.ListByOwner(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load rent ledger for export")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load rent ledger",
		})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Rent Ledger"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Listing", "Tenant", "Month", "Amount (BDT)", "Status", "Method", "Transaction ID", "Paid On"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for row, p := range payments {
		values := []interface{}{
			p.ListingTitle.String,
			p.TenantName.String,
			p.Month.Format("2006-01"),
			p.Amount,
			p.Status,
			p.PaymentMethod.String,
			p.TransactionID.String,
			p.PaidOn.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("rent_ledger_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("Failed to stream ledger export")
	}
}
