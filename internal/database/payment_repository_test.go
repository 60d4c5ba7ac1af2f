package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/bashabari/rental-backend/internal/models"
)

func TestPaymentCreate(t *testing.T) {
	t.Run("Status Is Always Paid", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)

		payment := &models.RentPayment{
			ListingID: uuid.New(),
			TenantID:  uuid.New(),
			Amount:    15000,
			Month:     time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Status:    models.PaymentStatusPending, // submitted status is ignored
		}

		mock.ExpectExec("INSERT INTO rent_payments").
			WithArgs(sqlmock.AnyArg(), payment.ListingID, payment.TenantID, 15000.0,
				payment.Month, models.PaymentStatusPaid, payment.PaymentMethod,
				payment.TransactionID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(payment)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, payment.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Same Month Can Be Recorded Twice", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)

		listingID := uuid.New()
		tenantID := uuid.New()
		month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectExec("INSERT INTO rent_payments").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO rent_payments").
			WillReturnResult(sqlmock.NewResult(1, 1))

		// the ledger is an append-only history, so a second entry for
		// the same month is a new row, not a conflict
		for i := 0; i < 2; i++ {
			err := repo.Create(&models.RentPayment{
				ListingID: listingID,
				TenantID:  tenantID,
				Amount:    15000,
				Month:     month,
			})
			require.NoError(t, err)
		}

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListByTenant(t *testing.T) {
	t.Run("Ordered Month Descending", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)
		tenantID := uuid.New()

		columns := []string{
			"id", "listing_id", "listing_title", "tenant_id", "tenant_name",
			"amount", "month", "status", "payment_method", "transaction_id", "paid_on",
		}
		rows := sqlmock.NewRows(columns).
			AddRow(uuid.New(), uuid.New(), "Flat in Mirpur", tenantID, "karim",
				15000.0, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), "paid", "bKash", "TX123", testTime()).
			AddRow(uuid.New(), uuid.New(), "Flat in Mirpur", tenantID, "karim",
				15000.0, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), "paid", "Cash", nil, testTime())

		mock.ExpectQuery("SELECT (.+) FROM rent_payments rp").
			WithArgs(tenantID).
			WillReturnRows(rows)

		payments, err := repo.ListByTenant(tenantID)
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.True(t, payments[0].Month.After(payments[1].Month))
		assert.Equal(t, "bKash", payments[0].PaymentMethod.String)
		assert.False(t, payments[1].TransactionID.Valid)
	})
}
