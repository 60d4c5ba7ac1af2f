package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. New appointments always start as pending;
// only the listing owner moves them to confirmed or cancelled.
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment is a viewing request made by a tenant for a listing
type Appointment struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ListingID    uuid.UUID  `json:"listing_id" db:"listing_id"`
	ListingTitle NullString `json:"listing_title,omitempty" db:"listing_title"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	Date         time.Time  `json:"date" db:"date"`
	Time         string     `json:"time" db:"time"` // HH:MM, 24h
	Status       string     `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// BookAppointmentRequest is the payload for POST /appointment/book/:listing_id/
type BookAppointmentRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
	Time string `json:"time" binding:"required"` // HH:MM
}

// Validate checks date and time formats
func (r *BookAppointmentRequest) Validate() error {
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse("15:04", r.Time); err != nil {
		return fmt.Errorf("time must be in HH:MM format")
	}
	return nil
}

// UpdateAppointmentStatusRequest is the payload for PUT /appointment/:id/status
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Validate allows only the owner-triggered transitions out of pending
func (r *UpdateAppointmentStatusRequest) Validate() error {
	if r.Status != AppointmentStatusConfirmed && r.Status != AppointmentStatusCancelled {
		return fmt.Errorf("status must be %q or %q", AppointmentStatusConfirmed, AppointmentStatusCancelled)
	}
	return nil
}
