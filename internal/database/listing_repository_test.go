package database

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/bashabari/rental-backend/internal/models"
)

func TestAddImage(t *testing.T) {
	t.Run("Cover Clears Previous Cover In Same Transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewListingRepository(db)
		listingID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE listing_images SET is_cover = false").
			WithArgs(listingID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO listing_images").
			WithArgs(sqlmock.AnyArg(), listingID, "photo.jpg", false, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.AddImage(&models.ListingImage{
			ListingID: listingID,
			ImagePath: "photo.jpg",
			IsCover:   true,
		})
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Non-Cover Skips Clear", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewListingRepository(db)
		listingID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO listing_images").
			WithArgs(sqlmock.AnyArg(), listingID, "photo.jpg", false, false, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.AddImage(&models.ListingImage{
			ListingID: listingID,
			ImagePath: "photo.jpg",
		})
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert Failure Rolls Back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewListingRepository(db)
		listingID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE listing_images SET is_cover = false").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO listing_images").
			WillReturnError(fmt.Errorf("disk full"))
		mock.ExpectRollback()

		err := repo.AddImage(&models.ListingImage{
			ListingID: listingID,
			ImagePath: "photo.jpg",
			IsCover:   true,
		})
		assert.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBuildSearchQuery(t *testing.T) {
	t.Run("No Criteria Has No Where Clause", func(t *testing.T) {
		query, args := buildSearchQuery(models.SearchCriteria{})

		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "ORDER BY l.created_at, l.id")
		assert.Empty(t, args)
	})

	t.Run("All Criteria Combine With AND", func(t *testing.T) {
		minRent := 5000
		maxRent := 20000
		rooms := 3
		availableBy := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
		family := true

		query, args := buildSearchQuery(models.SearchCriteria{
			Area:           "Dhanmondi",
			MinRent:        &minRent,
			MaxRent:        &maxRent,
			Rooms:          &rooms,
			AvailableBy:    &availableBy,
			Keyword:        "balcony",
			FamilyFriendly: &family,
		})

		assert.Equal(t, 6, strings.Count(query, " AND "))
		assert.Contains(t, query, "a.name ILIKE $1")
		assert.Contains(t, query, "l.price >= $2")
		assert.Contains(t, query, "l.price <= $3")
		assert.Contains(t, query, "l.rooms = $4")
		assert.Contains(t, query, "l.available_from <= $5")
		assert.Contains(t, query, "(l.title ILIKE $6 OR l.description ILIKE $6)")
		assert.Contains(t, query, "l.family_friendly = $7")
		assert.Equal(t, []interface{}{"%Dhanmondi%", 5000, 20000, 3, availableBy, "%balcony%", true}, args)
	})

	t.Run("Partial Criteria Number Placeholders Sequentially", func(t *testing.T) {
		rooms := 2

		query, args := buildSearchQuery(models.SearchCriteria{
			Rooms:   &rooms,
			Keyword: "lake view",
		})

		assert.Contains(t, query, "l.rooms = $1")
		assert.Contains(t, query, "(l.title ILIKE $2 OR l.description ILIKE $2)")
		assert.Equal(t, []interface{}{2, "%lake view%"}, args)
	})
}

func TestSearch(t *testing.T) {
	listingColumns := []string{
		"id", "title", "description", "area_id", "area_name", "address",
		"latitude", "longitude", "price", "area_size", "rooms",
		"available_from", "owner_id", "is_verified", "has_virtual_tour",
		"short_term", "furnished", "family_friendly", "female_only",
		"single_allowed", "virtual_tour_video", "created_at",
	}

	t.Run("Attaches Cover Images", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewListingRepository(db)
		listingID := uuid.New()
		areaID := uuid.New()

		rows := sqlmock.NewRows(listingColumns).
			AddRow(listingID, "Flat in Dhanmondi", "Two bed flat", areaID, "Dhanmondi",
				"House 5, Road 8", 23.74, 90.37, 15000, 900, 2,
				testTime(), uuid.New(), false, false,
				false, true, true, false,
				true, nil, testTime())

		mock.ExpectQuery("SELECT (.+) FROM listings l").
			WillReturnRows(rows)

		coverRows := sqlmock.NewRows([]string{"id", "listing_id", "image_path", "is_360", "is_cover", "created_at"}).
			AddRow(uuid.New(), listingID, "cover.jpg", false, true, testTime())
		mock.ExpectQuery("SELECT (.+) FROM listing_images").
			WillReturnRows(coverRows)

		listings, err := repo.Search(models.SearchCriteria{})
		require.NoError(t, err)
		require.Len(t, listings, 1)
		require.NotNil(t, listings[0].CoverImage)
		assert.Equal(t, "cover.jpg", listings[0].CoverImage.ImagePath)
	})

	t.Run("Empty Result Skips Cover Lookup", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewListingRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM listings l").
			WillReturnRows(sqlmock.NewRows(listingColumns))

		listings, err := repo.Search(models.SearchCriteria{})
		require.NoError(t, err)
		assert.Empty(t, listings)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
