package services

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/models"
)

// SearchService turns query-string filters into listing searches.
// Every filter is optional; supplied filters narrow the result with AND.
type SearchService struct {
	listings *database.ListingRepository
}

// NewSearchService creates a new search service
func NewSearchService(listings *database.ListingRepository) *SearchService {
	return &SearchService{
		listings: listings,
	}
}

// ParseCriteria builds search criteria from URL query parameters.
// Recognized parameters: area, min_rent, max_rent, rooms, available_from,
// q (keyword), family (yes/no). Malformed values are a validation error,
// not a silently ignored filter.
func (s *SearchService) ParseCriteria(values url.Values) (*models.SearchCriteria, error) {
	criteria := &models.SearchCriteria{
		Area:    values.Get("area"),
		Keyword: values.Get("q"),
	}

	if v := values.Get("min_rent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("min_rent must be a non-negative integer")
		}
		criteria.MinRent = &n
	}

	if v := values.Get("max_rent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("max_rent must be a non-negative integer")
		}
		criteria.MaxRent = &n
	}

	if v := values.Get("rooms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("rooms must be a positive integer")
		}
		criteria.Rooms = &n
	}

	if v := values.Get("available_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("available_from must be in YYYY-MM-DD format")
		}
		criteria.AvailableBy = &t
	}

	// Absent means no preference; yes/no narrow to one side.
	switch v := values.Get("family"); v {
	case "":
	case "yes":
		b := true
		criteria.FamilyFriendly = &b
	case "no":
		b := false
		criteria.FamilyFriendly = &b
	default:
		return nil, fmt.Errorf("family must be yes or no")
	}

	return criteria, nil
}

// Search runs the filtered listing query
func (s *SearchService) Search(criteria *models.SearchCriteria) ([]models.Listing, error) {
	return s.listings.Search(*criteria)
}
