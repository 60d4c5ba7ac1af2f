package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/bashabari/rental-backend/internal/models"
)

// AreaRepository handles area and rent-history database operations
type AreaRepository struct {
	db DB
}

// NewAreaRepository creates a new area repository
func NewAreaRepository(db DB) *AreaRepository {
	return &AreaRepository{
		db: db,
	}
}

// List retrieves all areas ordered by name
func (r *AreaRepository) List() ([]models.Area, error) {
	var areas []models.Area

	query := `
		SELECT id, name, safety_score, description
		FROM areas
		ORDER BY name
	`

	err := r.db.Select(&areas, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}

	return areas, nil
}

// GetByID retrieves a single area
func (r *AreaRepository) GetByID(id uuid.UUID) (*models.Area, error) {
	var area models.Area

	query := `
		SELECT id, name, safety_score, description
		FROM areas
		WHERE id = $1
	`

	err := r.db.Get(&area, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get area: %w", err)
	}

	return &area, nil
}

// RentHistory retrieves the yearly average rents recorded for an area,
// oldest year first
func (r *AreaRepository) RentHistory(areaID uuid.UUID) ([]models.RentHistory, error) {
	var history []models.RentHistory

	query := `
		SELECT id, area_id, year, average_rent
		FROM rent_history
		WHERE area_id = $1
		ORDER BY year
	`

	err := r.db.Select(&history, query, areaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rent history: %w", err)
	}

	return history, nil
}
