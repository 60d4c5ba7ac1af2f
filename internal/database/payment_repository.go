package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/bashabari/rental-backend/internal/models"
)

// PaymentRepository handles rent-payment database operations
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

// Create records a rent payment. Payments filed through the tenant flow
// are self-reported, so the status is forced to paid regardless of what
// the caller put on the model.
func (r *PaymentRepository) Create(payment *models.RentPayment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.Status = models.PaymentStatusPaid
	payment.PaidOn = time.Now()

	query := `
		INSERT INTO rent_payments (
			id, listing_id, tenant_id, amount, month, status,
			payment_method, transaction_id, paid_on
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		query,
		payment.ID,
		payment.ListingID,
		payment.TenantID,
		payment.Amount,
		payment.Month,
		payment.Status,
		payment.PaymentMethod,
		payment.TransactionID,
		payment.PaidOn,
	)
	if err != nil {
		return fmt.Errorf("failed to create rent payment: %w", err)
	}

	return nil
}

// ListByTenant retrieves payments filed by a tenant, ordered by month descending
func (r *PaymentRepository) ListByTenant(tenantID uuid.UUID) ([]models.RentPayment, error) {
	var payments []models.RentPayment

	query := `
		SELECT rp.id, rp.listing_id, l.title AS listing_title, rp.tenant_id,
		       u.username AS tenant_name, rp.amount, rp.month, rp.status,
		       rp.payment_method, rp.transaction_id, rp.paid_on
		FROM rent_payments rp
		JOIN listings l ON l.id = rp.listing_id
		JOIN users u ON u.id = rp.tenant_id
		WHERE rp.tenant_id = $1
		ORDER BY rp.month DESC
	`

	err := r.db.Select(&payments, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant payments: %w", err)
	}

	return payments, nil
}

// ListByOwner retrieves payments across all listings owned by a user,
// ordered by month descending
func (r *PaymentRepository) ListByOwner(ownerID uuid.UUID) ([]models.RentPayment, error) {
	var payments []models.RentPayment

	query := `
		SELECT rp.id, rp.listing_id, l.title AS listing_title, rp.tenant_id,
		       u.username AS tenant_name, rp.amount, rp.month, rp.status,
		       rp.payment_method, rp.transaction_id, rp.paid_on
		FROM rent_payments rp
		JOIN listings l ON l.id = rp.listing_id
		JOIN users u ON u.id = rp.tenant_id
		WHERE l.owner_id = $1
		ORDER BY rp.month DESC
	`

	err := r.db.Select(&payments, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner payments: %w", err)
	}

	return payments, nil
}
