package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Area is a neighbourhood a listing can belong to
type Area struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	SafetyScore int       `json:"safety_score" db:"safety_score"` // 1 to 10
	Description string    `json:"description" db:"description"`
}

// RentHistory records the average rent for an area in a given year
type RentHistory struct {
	ID          uuid.UUID `json:"id" db:"id"`
	AreaID      uuid.UUID `json:"area_id" db:"area_id"`
	Year        int       `json:"year" db:"year"`
	AverageRent int       `json:"average_rent" db:"average_rent"`
}

// Listing is a published rental property
type Listing struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	AreaID      uuid.NullUUID `json:"area_id" db:"area_id"` // SET NULL on area deletion
	AreaName    NullString    `json:"area_name,omitempty" db:"area_name"`
	Address     string        `json:"address" db:"address"`
	Latitude    float64       `json:"latitude" db:"latitude"`
	Longitude   float64       `json:"longitude" db:"longitude"`

	Price         int       `json:"price" db:"price"`
	AreaSize      int       `json:"area_size" db:"area_size"` // square feet
	Rooms         int       `json:"rooms" db:"rooms"`
	AvailableFrom time.Time `json:"available_from" db:"available_from"`

	OwnerID    uuid.UUID `json:"owner_id" db:"owner_id"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	HasVirtualTour bool `json:"has_virtual_tour" db:"has_virtual_tour"`
	ShortTerm      bool `json:"short_term" db:"short_term"`
	Furnished      bool `json:"furnished" db:"furnished"`
	FamilyFriendly bool `json:"family_friendly" db:"family_friendly"`
	FemaleOnly     bool `json:"female_only" db:"female_only"`
	SingleAllowed  bool `json:"single_allowed" db:"single_allowed"`

	VirtualTourVideo NullString `json:"virtual_tour_video,omitempty" db:"virtual_tour_video"`

	// Derived at read time, never stored
	CoverImage *ListingImage  `json:"cover_image,omitempty" db:"-"`
	Images     []ListingImage `json:"images,omitempty" db:"-"`
	Reviews    []Review       `json:"reviews,omitempty" db:"-"`
}

// ListingImage is an uploaded photo of a listing.
// At most one image per listing may have IsCover set; the repository
// clears previous covers and writes the new one in a single transaction.
type ListingImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ListingID uuid.UUID `json:"listing_id" db:"listing_id"`
	ImagePath string    `json:"image_path" db:"image_path"`
	Is360     bool      `json:"is_360" db:"is_360"`
	IsCover   bool      `json:"is_cover" db:"is_cover"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateListingRequest carries the multipart form fields of POST /create-listing/.
// Latitude/longitude come from the map widget and are attached after core
// validation, so they are not part of the required set.
type CreateListingRequest struct {
	Title         string
	Description   string
	AreaID        string
	Address       string
	Price         string
	AreaSize      string
	Rooms         string
	AvailableFrom string
	Latitude      string
	Longitude     string

	HasVirtualTour   bool
	ShortTerm        bool
	Furnished        bool
	FamilyFriendly   bool
	FemaleOnly       bool
	SingleAllowed    bool
	VirtualTourVideo string
}

// Validate returns field-level validation errors, keyed by form field name.
// Image errors are merged into the same map by the handler (all-or-nothing).
func (r *CreateListingRequest) Validate() map[string]string {
	errs := make(map[string]string)

	required := map[string]string{
		"title":          r.Title,
		"description":    r.Description,
		"area":           r.AreaID,
		"address":        r.Address,
		"price":          r.Price,
		"area_size":      r.AreaSize,
		"rooms":          r.Rooms,
		"available_from": r.AvailableFrom,
	}
	for field, value := range required {
		if value == "" {
			errs[field] = "this field is required"
		}
	}

	if r.AreaID != "" {
		if _, err := uuid.Parse(r.AreaID); err != nil {
			errs["area"] = "area is not valid"
		}
	}
	if r.AvailableFrom != "" {
		if _, err := time.Parse("2006-01-02", r.AvailableFrom); err != nil {
			errs["available_from"] = "date must be in YYYY-MM-DD format"
		}
	}

	intFields := map[string]string{
		"price":     r.Price,
		"area_size": r.AreaSize,
		"rooms":     r.Rooms,
	}
	for field, value := range intFields {
		if value == "" {
			continue
		}
		if n, err := strconv.Atoi(value); err != nil || n <= 0 {
			errs[field] = "must be a positive integer"
		}
	}

	floatFields := map[string]string{
		"latitude":  r.Latitude,
		"longitude": r.Longitude,
	}
	for field, value := range floatFields {
		if value == "" {
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			errs[field] = "must be a number"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// SearchCriteria is the optional filter set of the listing search.
// Nil/zero fields impose no constraint; supplied fields narrow with AND.
type SearchCriteria struct {
	Area           string
	MinRent        *int
	MaxRent        *int
	Rooms          *int
	AvailableBy    *time.Time
	Keyword        string
	FamilyFriendly *bool
}
