package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/config"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/metrics"
	"github.com/bashabari/rental-backend/internal/middleware"
	"github.com/bashabari/rental-backend/internal/models"
	"github.com/bashabari/rental-backend/internal/services"
	"github.com/bashabari/rental-backend/pkg/storage"
)

// ListingHandler handles listing-related HTTP requests
type ListingHandler struct {
	listings      *database.ListingRepository
	areas         *database.AreaRepository
	reviews       *database.ReviewRepository
	searchService *services.SearchService
	store         *storage.LocalStore
	uploadCfg     config.UploadConfig
	logger        *logrus.Logger
}

// NewListingHandler creates a new listing handler
func NewListingHandler(
	listings *database.ListingRepository,
	areas *database.AreaRepository,
	reviews *database.ReviewRepository,
	searchService *services.SearchService,
	store *storage.LocalStore,
	uploadCfg config.UploadConfig,
	logger *logrus.Logger,
) *ListingHandler {
	return &ListingHandler{
		listings:      listings,
		areas:         areas,
		reviews:       reviews,
		searchService: searchService,
		store:         store,
		uploadCfg:     uploadCfg,
		logger:        logger,
	}
}

// Search handles GET / — the public listing feed with optional filters
func (h *ListingHandler) Search(c *gin.Context) {
	criteria, err := h.searchService.ParseCriteria(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	listings, err := h.searchService.Search(criteria)
	if err != nil {
		h.logger.WithError(err).Error("Listing search failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to search listings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}

// GetByID handles GET /listings/:id
func (h *ListingHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid listing ID",
		})
		return
	}

	listing, err := h.listings.GetByID(id)
	if err != nil {
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

	reviews, err := h.reviews.ListByListing(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load reviews")
	} else {
		listing.Reviews = reviews
	}

	c.JSON(http.StatusOK, listing)
}

// MyListings handles GET /my-listings/
func (h *ListingHandler) MyListings(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	listings, err := h.listings.ListByOwner(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list owned listings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load listings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}

// Create handles POST /create-listing/. The request is multipart: listing
// fields plus up to the configured number of images. Validation is
// all-or-nothing — any field or image error rejects the whole submission
// and nothing is stored.
func (h *ListingHandler) Create(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	req := bindCreateListingForm(c)
	fieldErrs := req.Validate()
	if fieldErrs == nil {
		fieldErrs = make(map[string]string)
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid multipart form",
		})
		return
	}

	files := form.File["images"]
	if len(files) > h.uploadCfg.ImagesPerListing {
		fieldErrs["images"] = "too many images; at most " + strconv.Itoa(h.uploadCfg.ImagesPerListing) + " allowed"
	}
	for _, fh := range files {
		if fh.Size > h.uploadCfg.MaxImageBytes {
			fieldErrs["images"] = "image " + fh.Filename + " exceeds the maximum size"
			break
		}
		if !storage.AllowedImage(fh.Filename) {
			fieldErrs["images"] = "image " + fh.Filename + " has an unsupported format"
			break
		}
	}

	coverIndex := 0
	if v := c.PostForm("cover_index"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n >= len(files) {
			fieldErrs["cover_index"] = "cover_index must point at an uploaded image"
		} else {
			coverIndex = n
		}
	}

	if req.AreaID != "" {
		if areaID, err := uuid.Parse(req.AreaID); err == nil {
			if _, err := h.areas.GetByID(areaID); err != nil {
				fieldErrs["area"] = "area does not exist"
			}
		}
	}

	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation_error",
			"fields": fieldErrs,
		})
		return
	}

	listing := buildListing(&req, userCtx.UserID)

	if err := h.listings.Create(listing); err != nil {
		h.logger.WithError(err).Error("Failed to create listing")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create listing",
		})
		return
	}

	// cover_index picks the cover; a later per-image is_cover flag moves
	// it because each cover save clears the previous one
	var saved []string
	for i, fh := range files {
		name, err := h.store.SaveImage(fh)
		if err != nil {
			h.discardListing(listing.ID, saved)
			h.logger.WithError(err).Error("Failed to save listing image")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to save listing image",
			})
			return
		}
		saved = append(saved, name)

		image := &models.ListingImage{
			ListingID: listing.ID,
			ImagePath: name,
			Is360:     c.PostForm(fmt.Sprintf("is_360_%d", i)) == "true",
			IsCover:   i == coverIndex || c.PostForm(fmt.Sprintf("is_cover_%d", i)) == "true",
		}
		if err := h.listings.AddImage(image); err != nil {
			h.discardListing(listing.ID, saved)
			h.logger.WithError(err).Error("Failed to store listing image")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to store listing image",
			})
			return
		}
	}

	metrics.ListingsCreatedTotal.Inc()

	created, err := h.listings.GetByID(listing.ID)
	if err != nil {
		c.JSON(http.StatusCreated, listing)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// discardListing undoes a partially created listing so a failed image
// save never leaves a listing without its images
func (h *ListingHandler) discardListing(id uuid.UUID, saved []string) {
	for _, name := range saved {
		if err := h.store.Remove(name); err != nil {
			h.logger.WithError(err).Error("Failed to remove orphaned image file")
		}
	}
	if err := h.listings.Delete(id); err != nil {
		h.logger.WithError(err).Error("Failed to discard partially created listing")
	}
}

// bindCreateListingForm reads the multipart value fields
func bindCreateListingForm(c *gin.Context) models.CreateListingRequest {
	return models.CreateListingRequest{
		Title:            c.PostForm("title"),
		Description:      c.PostForm("description"),
		AreaID:           c.PostForm("area"),
		Address:          c.PostForm("address"),
		Price:            c.PostForm("price"),
		AreaSize:         c.PostForm("area_size"),
		Rooms:            c.PostForm("rooms"),
		AvailableFrom:    c.PostForm("available_from"),
		Latitude:         c.PostForm("latitude"),
		Longitude:        c.PostForm("longitude"),
		HasVirtualTour:   c.PostForm("has_virtual_tour") == "true",
		ShortTerm:        c.PostForm("short_term") == "true",
		Furnished:        c.PostForm("furnished") == "true",
		FamilyFriendly:   c.PostForm("family_friendly") == "true",
		FemaleOnly:       c.PostForm("female_only") == "true",
		SingleAllowed:    c.PostForm("single_allowed") == "true",
		VirtualTourVideo: c.PostForm("virtual_tour_video"),
	}
}

// buildListing converts the validated form into the stored model.
// Numeric parses cannot fail here because Validate already checked them.
func buildListing(req *models.CreateListingRequest, ownerID uuid.UUID) *models.Listing {
	price, _ := strconv.Atoi(req.Price)
	areaSize, _ := strconv.Atoi(req.AreaSize)
	rooms, _ := strconv.Atoi(req.Rooms)
	availableFrom, _ := time.Parse("2006-01-02", req.AvailableFrom)
	latitude, _ := strconv.ParseFloat(req.Latitude, 64)
	longitude, _ := strconv.ParseFloat(req.Longitude, 64)

	listing := &models.Listing{
		Title:            req.Title,
		Description:      req.Description,
		Address:          req.Address,
		Latitude:         latitude,
		Longitude:        longitude,
		Price:            price,
		AreaSize:         areaSize,
		Rooms:            rooms,
		AvailableFrom:    availableFrom,
		OwnerID:          ownerID,
		HasVirtualTour:   req.HasVirtualTour,
		ShortTerm:        req.ShortTerm,
		Furnished:        req.Furnished,
		FamilyFriendly:   req.FamilyFriendly,
		FemaleOnly:       req.FemaleOnly,
		SingleAllowed:    req.SingleAllowed,
		VirtualTourVideo: models.NewNullString(req.VirtualTourVideo),
	}

	if areaID, err := uuid.Parse(req.AreaID); err == nil {
		listing.AreaID = uuid.NullUUID{UUID: areaID, Valid: true}
	}

	return listing
}
