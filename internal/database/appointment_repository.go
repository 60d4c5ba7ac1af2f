package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/bashabari/rental-backend/internal/models"
)

// AppointmentRepository handles viewing-appointment database operations
type AppointmentRepository struct {
	db DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db DB) *AppointmentRepository {
	return &AppointmentRepository{
		db: db,
	}
}

// Create persists a new appointment. Status is always pending on creation;
// multiple tenants may request the same slot (no conflict detection).
func (r *AppointmentRepository) Create(appointment *models.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.Status = models.AppointmentStatusPending
	appointment.CreatedAt = time.Now()

	query := `
		INSERT INTO appointments (id, listing_id, user_id, date, time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		query,
		appointment.ID,
		appointment.ListingID,
		appointment.UserID,
		appointment.Date,
		appointment.Time,
		appointment.Status,
		appointment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	return nil
}

// GetByID retrieves an appointment by ID
func (r *AppointmentRepository) GetByID(id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment

	query := `
		SELECT ap.id, ap.listing_id, l.title AS listing_title, ap.user_id,
		       ap.date, ap.time, ap.status, ap.created_at
		FROM appointments ap
		JOIN listings l ON l.id = ap.listing_id
		WHERE ap.id = $1
	`

	err := r.db.Get(&appointment, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch appointment: %w", err)
	}

	return &appointment, nil
}

// ListByUser retrieves all appointments requested by a tenant, newest first
func (r *AppointmentRepository) ListByUser(userID uuid.UUID) ([]models.Appointment, error) {
	var appointments []models.Appointment

	query := `
		SELECT ap.id, ap.listing_id, l.title AS listing_title, ap.user_id,
		       ap.date, ap.time, ap.status, ap.created_at
		FROM appointments ap
		JOIN listings l ON l.id = ap.listing_id
		WHERE ap.user_id = $1
		ORDER BY ap.created_at DESC
	`

	err := r.db.Select(&appointments, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	return appointments, nil
}

// ListByOwner retrieves appointments across every listing owned by a user,
// newest first
func (r *AppointmentRepository) ListByOwner(ownerID uuid.UUID) ([]models.Appointment, error) {
	var appointments []models.Appointment

	query := `
		SELECT ap.id, ap.listing_id, l.title AS listing_title, ap.user_id,
		       ap.date, ap.time, ap.status, ap.created_at
		FROM appointments ap
		JOIN listings l ON l.id = ap.listing_id
		WHERE l.owner_id = $1
		ORDER BY ap.created_at DESC
	`

	err := r.db.Select(&appointments, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner appointments: %w", err)
	}

	return appointments, nil
}

// UpdateStatus transitions a pending appointment to confirmed or cancelled.
// The WHERE clause keeps non-pending appointments immutable.
func (r *AppointmentRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `
		UPDATE appointments
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.db.Exec(query, status, id, models.AppointmentStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("appointment is not pending: %w", ErrNotFound)
	}

	return nil
}
