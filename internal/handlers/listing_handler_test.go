package handlers

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/bashabari/rental-backend/internal/config"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/middleware"
	"github.com/bashabari/rental-backend/internal/services"
	"github.com/bashabari/rental-backend/pkg/storage"
)

var areaColumns = []string{"id", "name", "safety_score", "description"}

func newListingRouter(t *testing.T, ownerID uuid.UUID) (*gin.Engine, sqlmock.Sqlmock, string) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}

	uploadDir := t.TempDir()
	store, err := storage.NewLocalStore(uploadDir, 5<<20)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	listings := database.NewListingRepository(wrapped)
	handler := NewListingHandler(
		listings,
		database.NewAreaRepository(wrapped),
		database.NewReviewRepository(wrapped),
		services.NewSearchService(listings),
		store,
		config.UploadConfig{Dir: uploadDir, MaxImageBytes: 5 << 20, ImagesPerListing: 10},
		logger,
	)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/listing/create/", func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID:   ownerID,
			Username: "rahima",
		})
	}, handler.Create)
	return router, mock, uploadDir
}

// createListingRequest builds a multipart submission with every required
// field filled in, plus one uploaded file per name in images.
func createListingRequest(t *testing.T, areaID uuid.UUID, extra map[string]string, images ...string) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":          "Flat in Dhanmondi",
		"description":    "Two bed flat near the lake",
		"area":           areaID.String(),
		"address":        "House 5, Road 8",
		"price":          "15000",
		"area_size":      "900",
		"rooms":          "2",
		"available_from": "2026-04-01",
	}
	for k, v := range extra {
		fields[k] = v
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, name := range images {
		part, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/listing/create/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func expectAreaLookup(mock sqlmock.Sqlmock, areaID uuid.UUID) {
	mock.ExpectQuery("SELECT (.+) FROM areas").
		WithArgs(areaID).
		WillReturnRows(sqlmock.NewRows(areaColumns).
			AddRow(areaID, "Dhanmondi", 8, "Residential area"))
}

func TestCreateListing(t *testing.T) {
	t.Run("Cover Index Picks Later Image", func(t *testing.T) {
		ownerID := uuid.New()
		areaID := uuid.New()
		router, mock, _ := newListingRouter(t, ownerID)

		expectAreaLookup(mock, areaID)
		mock.ExpectExec("INSERT INTO listings").
			WillReturnResult(sqlmock.NewResult(1, 1))

		// first image is not the cover, so no clear runs for it
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO listing_images").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), false, false, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE listing_images SET is_cover = false").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO listing_images").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), false, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		listingID := uuid.New()
		created := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT (.+) FROM listings l").
			WillReturnRows(listingRow(listingID, ownerID))
		mock.ExpectQuery("SELECT (.+) FROM listing_images").
			WillReturnRows(sqlmock.NewRows(imageColumns).
				AddRow(uuid.New(), listingID, "a.jpg", false, false, created).
				AddRow(uuid.New(), listingID, "b.jpg", false, true, created))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createListingRequest(t, areaID,
			map[string]string{"cover_index": "1"}, "front.jpg", "bedroom.jpg"))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Per-Image Cover Flag Picks Later Image", func(t *testing.T) {
		ownerID := uuid.New()
		areaID := uuid.New()
		router, mock, _ := newListingRouter(t, ownerID)

		expectAreaLookup(mock, areaID)
		mock.ExpectExec("INSERT INTO listings").
			WillReturnResult(sqlmock.NewResult(1, 1))

		// index 0 is the default cover, then the flagged image replaces it
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE listing_images SET is_cover = false").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO listing_images").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), false, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE listing_images SET is_cover = false").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO listing_images").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), true, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		listingID := uuid.New()
		mock.ExpectQuery("SELECT (.+) FROM listings l").
			WillReturnRows(listingRow(listingID, ownerID))
		mock.ExpectQuery("SELECT (.+) FROM listing_images").
			WillReturnRows(sqlmock.NewRows(imageColumns))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createListingRequest(t, areaID,
			map[string]string{"is_cover_1": "true", "is_360_1": "true"},
			"front.jpg", "tour.jpg"))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unsupported Image Format Rejected Before Insert", func(t *testing.T) {
		areaID := uuid.New()
		router, mock, uploadDir := newListingRouter(t, uuid.New())

		expectAreaLookup(mock, areaID)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createListingRequest(t, areaID, nil, "front.gif"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unsupported format")
		assert.NoError(t, mock.ExpectationsWereMet())

		entries, err := os.ReadDir(uploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Cover Index Out Of Range Rejected", func(t *testing.T) {
		areaID := uuid.New()
		router, mock, _ := newListingRouter(t, uuid.New())

		expectAreaLookup(mock, areaID)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createListingRequest(t, areaID,
			map[string]string{"cover_index": "2"}, "front.jpg"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "cover_index")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Image Insert Failure Discards Listing", func(t *testing.T) {
		areaID := uuid.New()
		router, mock, uploadDir := newListingRouter(t, uuid.New())

		expectAreaLookup(mock, areaID)
		mock.ExpectExec("INSERT INTO listings").
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE listing_images SET is_cover = false").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO listing_images").
			WillReturnError(fmt.Errorf("disk full"))
		mock.ExpectRollback()
		mock.ExpectExec("DELETE FROM listings").
			WillReturnResult(sqlmock.NewResult(1, 1))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createListingRequest(t, areaID, nil, "front.jpg"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())

		entries, err := os.ReadDir(uploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries, "saved files must be removed when the listing is discarded")
	})
}
