package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/database"
)

// AreaHandler handles area and rent-history HTTP requests
type AreaHandler struct {
	areas  *database.AreaRepository
	logger *logrus.Logger
}

// NewAreaHandler creates a new area handler
func NewAreaHandler(areas *database.AreaRepository, logger *logrus.Logger) *AreaHandler {
	return &AreaHandler{
		areas:  areas,
		logger: logger,
	}
}

// List handles GET /areas/
func (h *AreaHandler) List(c *gin.Context) {
	areas, err := h.areas.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list areas")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load areas",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"areas": areas,
		"count": len(areas),
	})
}

// RentHistory handles GET /areas/:id/rent-history
func (h *AreaHandler) RentHistory(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid area ID",
		})
		return
	}

	area, err := h.areas.GetByID(areaID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Area not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load area")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load area",
		})
		return
	}

	history, err := h.areas.RentHistory(areaID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load rent history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load rent history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"area":    area,
		"history": history,
	})
}
