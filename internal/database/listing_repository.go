package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/bashabari/rental-backend/internal/models"
)

// ListingRepository handles listing and listing-image database operations
type ListingRepository struct {
	db DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db DB) *ListingRepository {
	return &ListingRepository{
		db: db,
	}
}

// Create persists a new listing
func (r *ListingRepository) Create(listing *models.Listing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	listing.CreatedAt = time.Now()

	query := `
		INSERT INTO listings (
			id, title, description, area_id, address, latitude, longitude,
			price, area_size, rooms, available_from, owner_id, is_verified,
			has_virtual_tour, short_term, furnished, family_friendly,
			female_only, single_allowed, virtual_tour_video, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21
		)
	`

	_, err := r.db.Exec(
		query,
		listing.ID,
		listing.Title,
		listing.Description,
		listing.AreaID,
		listing.Address,
		listing.Latitude,
		listing.Longitude,
		listing.Price,
		listing.AreaSize,
		listing.Rooms,
		listing.AvailableFrom,
		listing.OwnerID,
		listing.IsVerified,
		listing.HasVirtualTour,
		listing.ShortTerm,
		listing.Furnished,
		listing.FamilyFriendly,
		listing.FemaleOnly,
		listing.SingleAllowed,
		listing.VirtualTourVideo,
		listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// AddImage saves a listing image. When the image is flagged as cover, the
// previous cover flags of the listing are cleared in the same transaction,
// so at most one cover is ever visible and concurrent saves serialize on
// the row locks rather than racing through a read-modify-write.
func (r *ListingRepository) AddImage(image *models.ListingImage) error {
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	image.CreatedAt = time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if image.IsCover {
		clearQuery := `
			UPDATE listing_images
			SET is_cover = false
			WHERE listing_id = $1 AND is_cover = true
		`
		if _, err := tx.Exec(clearQuery, image.ListingID); err != nil {
			return fmt.Errorf("failed to clear previous cover: %w", err)
		}
	}

	insertQuery := `
		INSERT INTO listing_images (id, listing_id, image_path, is_360, is_cover, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(
		insertQuery,
		image.ID,
		image.ListingID,
		image.ImagePath,
		image.Is360,
		image.IsCover,
		image.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit image save: %w", err)
	}

	return nil
}

// Delete removes a listing; images, appointments and reviews cascade
func (r *ListingRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a listing with its area name, images and reviews
func (r *ListingRepository) GetByID(id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing

	query := `
		SELECT l.id, l.title, l.description, l.area_id, a.name AS area_name,
		       l.address, l.latitude, l.longitude, l.price, l.area_size,
		       l.rooms, l.available_from, l.owner_id, l.is_verified,
		       l.has_virtual_tour, l.short_term, l.furnished, l.family_friendly,
		       l.female_only, l.single_allowed, l.virtual_tour_video, l.created_at
		FROM listings l
		LEFT JOIN areas a ON a.id = l.area_id
		WHERE l.id = $1
	`

	err := r.db.Get(&listing, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	images, err := r.GetImages(id)
	if err != nil {
		return nil, err
	}
	listing.Images = images
	for i := range images {
		if images[i].IsCover {
			listing.CoverImage = &images[i]
			break
		}
	}

	return &listing, nil
}

// GetImages retrieves all images for a listing
func (r *ListingRepository) GetImages(listingID uuid.UUID) ([]models.ListingImage, error) {
	var images []models.ListingImage

	query := `
		SELECT id, listing_id, image_path, is_360, is_cover, created_at
		FROM listing_images
		WHERE listing_id = $1
		ORDER BY created_at
	`

	err := r.db.Select(&images, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing images: %w", err)
	}

	return images, nil
}

// ListByOwner retrieves all listings owned by a user, newest first
func (r *ListingRepository) ListByOwner(ownerID uuid.UUID) ([]models.Listing, error) {
	var listings []models.Listing

	query := `
		SELECT l.id, l.title, l.description, l.area_id, a.name AS area_name,
		       l.address, l.latitude, l.longitude, l.price, l.area_size,
		       l.rooms, l.available_from, l.owner_id, l.is_verified,
		       l.has_virtual_tour, l.short_term, l.furnished, l.family_friendly,
		       l.female_only, l.single_allowed, l.virtual_tour_video, l.created_at
		FROM listings l
		LEFT JOIN areas a ON a.id = l.area_id
		WHERE l.owner_id = $1
		ORDER BY l.created_at DESC
	`

	err := r.db.Select(&listings, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings by owner: %w", err)
	}

	return listings, nil
}

// buildSearchQuery composes the listing search SQL from the supplied
// criteria. Omitted criteria add no clause; supplied ones AND together.
// Results come back in insertion order.
func buildSearchQuery(criteria models.SearchCriteria) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT l.id, l.title, l.description, l.area_id, a.name AS area_name,
		       l.address, l.latitude, l.longitude, l.price, l.area_size,
		       l.rooms, l.available_from, l.owner_id, l.is_verified,
		       l.has_virtual_tour, l.short_term, l.furnished, l.family_friendly,
		       l.female_only, l.single_allowed, l.virtual_tour_video, l.created_at
		FROM listings l
		LEFT JOIN areas a ON a.id = l.area_id
	`)

	var clauses []string
	var args []interface{}

	addClause := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if criteria.Area != "" {
		addClause("a.name ILIKE $%d", "%"+criteria.Area+"%")
	}
	if criteria.MinRent != nil {
		addClause("l.price >= $%d", *criteria.MinRent)
	}
	if criteria.MaxRent != nil {
		addClause("l.price <= $%d", *criteria.MaxRent)
	}
	if criteria.Rooms != nil {
		addClause("l.rooms = $%d", *criteria.Rooms)
	}
	if criteria.AvailableBy != nil {
		addClause("l.available_from <= $%d", *criteria.AvailableBy)
	}
	if criteria.Keyword != "" {
		keyword := "%" + criteria.Keyword + "%"
		args = append(args, keyword)
		clauses = append(clauses, fmt.Sprintf("(l.title ILIKE $%d OR l.description ILIKE $%d)", len(args), len(args)))
	}
	if criteria.FamilyFriendly != nil {
		addClause("l.family_friendly = $%d", *criteria.FamilyFriendly)
	}

	if len(clauses) > 0 {
		sb.WriteString("WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
		sb.WriteString("\n")
	}
	sb.WriteString("ORDER BY l.created_at, l.id")

	return sb.String(), args
}

// Search retrieves listings matching the criteria and resolves each
// listing's cover image (a read-time derived attribute)
func (r *ListingRepository) Search(criteria models.SearchCriteria) ([]models.Listing, error) {
	query, args := buildSearchQuery(criteria)

	var listings []models.Listing
	err := r.db.Select(&listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}

	if err := r.attachCoverImages(listings); err != nil {
		return nil, err
	}

	return listings, nil
}

// attachCoverImages resolves the cover image for each listing in one query
func (r *ListingRepository) attachCoverImages(listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}

	query := `
		SELECT id, listing_id, image_path, is_360, is_cover, created_at
		FROM listing_images
		WHERE is_cover = true AND listing_id = ANY($1)
	`

	var covers []models.ListingImage
	err := r.db.Select(&covers, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to fetch cover images: %w", err)
	}

	byListing := make(map[uuid.UUID]*models.ListingImage, len(covers))
	for i := range covers {
		byListing[covers[i].ListingID] = &covers[i]
	}
	for i := range listings {
		listings[i].CoverImage = byListing[listings[i].ID]
	}

	return nil
}
