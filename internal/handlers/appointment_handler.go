package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/metrics"
	"github.com/bashabari/rental-backend/internal/middleware"
	"github.com/bashabari/rental-backend/internal/models"
)

// AppointmentHandler handles viewing-appointment HTTP requests
type AppointmentHandler struct {
	appointments *database.AppointmentRepository
	listings     *database.ListingRepository
	logger       *logrus.Logger
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(
	appointments *database.AppointmentRepository,
	listings *database.ListingRepository,
	logger *logrus.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: appointments,
		listings:     listings,
		logger:       logger,
	}
}

// Book handles POST /appointment/book/:listing_id/
func (h *AppointmentHandler) Book(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid listing ID",
		})
		return
	}

	var req models.BookAppointmentRequest
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

	date, _ := time.Parse("2006-01-02", req.Date)
	appointment := &models.Appointment{
		ListingID: listingID,
		UserID:    userCtx.UserID,
		Date:      date,
		Time:      req.Time,
	}

	if err := h.appointments.Create(appointment); err != nil {
		h.logger.WithError(err).Error("Failed to book appointment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to book appointment",
		})
		return
	}

	metrics.AppointmentsBookedTotal.Inc()

	c.JSON(http.StatusCreated, appointment)
}

// Mine handles GET /appointment/my/, the tenant's own requests
func (h *AppointmentHandler) Mine(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	appointments, err := h.appointments.ListByUser(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list appointments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load appointments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// Manage handles GET /appointment/manage/, viewing requests across the
// caller's listings
func (h *AppointmentHandler) Manage(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	appointments, err := h.appointments.ListByOwner(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list incoming appointments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load appointments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// UpdateStatus handles PUT /appointment/:id/status. Only the owner of
// the listing may confirm or cancel, and only while the appointment is
// still pending.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid appointment ID",
		})
		return
	}

	var req models.UpdateAppointmentStatusRequest
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

	appointment, err := h.appointments.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Appointment not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load appointment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load appointment",
		})
		return
	}

	listing, err := h.listings.GetByID(appointment.ListingID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load listing for appointment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load listing",
		})
		return
	}

	if listing.OwnerID != userCtx.UserID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Only the listing owner can update this appointment",
			Code:    "NOT_LISTING_OWNER",
		})
		return
	}

	if err := h.appointments.UpdateStatus(id, req.Status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "not_pending",
				Message: "Only pending appointments can be updated",
				Code:    "APPOINTMENT_NOT_PENDING",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to update appointment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to update appointment",
		})
		return
	}

	appointment.Status = req.Status
	c.JSON(http.StatusOK, appointment)
}
