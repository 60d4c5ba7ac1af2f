package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/bashabari/rental-backend/internal/models"
)

func TestAppointmentCreate(t *testing.T) {
	t.Run("Always Starts Pending", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAppointmentRepository(db)

		appointment := &models.Appointment{
			ListingID: uuid.New(),
			UserID:    uuid.New(),
			Date:      testTime(),
			Time:      "15:30",
			Status:    models.AppointmentStatusConfirmed, // must be overridden
		}

		mock.ExpectExec("INSERT INTO appointments").
			WithArgs(sqlmock.AnyArg(), appointment.ListingID, appointment.UserID,
				appointment.Date, "15:30", models.AppointmentStatusPending, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(appointment)
		require.NoError(t, err)
		assert.Equal(t, models.AppointmentStatusPending, appointment.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAppointmentRepository(db)
		id := uuid.New()

		mock.ExpectExec("UPDATE appointments").
			WithArgs(models.AppointmentStatusConfirmed, id, models.AppointmentStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(id, models.AppointmentStatusConfirmed)
		assert.NoError(t, err)
	})

	t.Run("Not Pending", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAppointmentRepository(db)

		mock.ExpectExec("UPDATE appointments").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(uuid.New(), models.AppointmentStatusCancelled)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
