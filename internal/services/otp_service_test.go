package services

import (
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/bashabari/rental-backend/internal/database"
)

// newMockDB wraps sqlmock in the sqlx connection services run on
func newMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

// testLogger discards output so tests stay quiet
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeGateway records sent messages
type fakeGateway struct {
	phones   []string
	messages []string
	err      error
}

func (g *fakeGateway) Send(phone, message string) error {
	if g.err != nil {
		return g.err
	}
	g.phones = append(g.phones, phone)
	g.messages = append(g.messages, message)
	return nil
}

func TestGenerateRandomOTP(t *testing.T) {
	t.Run("Always Six Digits In Range", func(t *testing.T) {
		for i := 0; i < 500; i++ {
			otp, err := generateRandomOTP()
			require.NoError(t, err)
			require.Len(t, otp, 6)

			n, err := strconv.Atoi(otp)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, 100000)
			assert.LessOrEqual(t, n, 999999)
		}
	})

	t.Run("Varies Between Calls", func(t *testing.T) {
		otps := make(map[string]bool)
		for i := 0; i < 100; i++ {
			otp, err := generateRandomOTP()
			require.NoError(t, err)
			otps[otp] = true
		}
		assert.Greater(t, len(otps), 80)
	})
}

func TestIssue(t *testing.T) {
	t.Run("Stores Code And Sends SMS", func(t *testing.T) {
		db, mock := newMockDB(t)
		gateway := &fakeGateway{}
		service := NewOTPService(db, gateway, testLogger())
		userID := uuid.New()

		mock.ExpectQuery("UPDATE user_profiles").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), userID).
			WillReturnRows(sqlmock.NewRows([]string{"phone_number"}).AddRow("01712345678"))

		otp, err := service.Issue(userID)
		require.NoError(t, err)
		assert.Len(t, otp, 6)

		require.Len(t, gateway.phones, 1)
		assert.Equal(t, "01712345678", gateway.phones[0])
		assert.Contains(t, gateway.messages[0], otp)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Send Failure Surfaces", func(t *testing.T) {
		db, mock := newMockDB(t)
		gateway := &fakeGateway{err: fmt.Errorf("provider down")}
		service := NewOTPService(db, gateway, testLogger())

		mock.ExpectQuery("UPDATE user_profiles").
			WillReturnRows(sqlmock.NewRows([]string{"phone_number"}).AddRow("01712345678"))

		_, err := service.Issue(uuid.New())
		assert.Error(t, err)
	})
}

func TestVerify(t *testing.T) {
	t.Run("Success Clears Code And Marks Verified", func(t *testing.T) {
		db, mock := newMockDB(t)
		service := NewOTPService(db, &fakeGateway{}, testLogger())
		userID := uuid.New()

		mock.ExpectQuery("SELECT otp, is_verified").
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"otp", "is_verified"}).AddRow("654321", false))
		mock.ExpectExec("UPDATE user_profiles").
			WithArgs(sqlmock.AnyArg(), userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := service.Verify(userID, "654321")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong Code", func(t *testing.T) {
		db, mock := newMockDB(t)
		service := NewOTPService(db, &fakeGateway{}, testLogger())

		mock.ExpectQuery("SELECT otp, is_verified").
			WillReturnRows(sqlmock.NewRows([]string{"otp", "is_verified"}).AddRow("654321", false))

		err := service.Verify(uuid.New(), "111111")
		assert.ErrorIs(t, err, ErrOTPInvalid)
	})

	t.Run("No Code Pending", func(t *testing.T) {
		db, mock := newMockDB(t)
		service := NewOTPService(db, &fakeGateway{}, testLogger())

		mock.ExpectQuery("SELECT otp, is_verified").
			WillReturnRows(sqlmock.NewRows([]string{"otp", "is_verified"}).AddRow("", false))

		err := service.Verify(uuid.New(), "111111")
		assert.ErrorIs(t, err, ErrNoOTPPending)
	})

	t.Run("Already Verified", func(t *testing.T) {
		db, mock := newMockDB(t)
		service := NewOTPService(db, &fakeGateway{}, testLogger())

		mock.ExpectQuery("SELECT otp, is_verified").
			WillReturnRows(sqlmock.NewRows([]string{"otp", "is_verified"}).AddRow("", true))

		err := service.Verify(uuid.New(), "111111")
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})
}

func TestResend(t *testing.T) {
	t.Run("Issues A New Code", func(t *testing.T) {
		db, mock := newMockDB(t)
		gateway := &fakeGateway{}
		service := NewOTPService(db, gateway, testLogger())
		userID := uuid.New()

		mock.ExpectQuery("SELECT is_verified").
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"is_verified"}).AddRow(false))
		mock.ExpectQuery("UPDATE user_profiles").
			WillReturnRows(sqlmock.NewRows([]string{"phone_number"}).AddRow("01812345678"))

		otp, err := service.Resend(userID)
		require.NoError(t, err)
		assert.Len(t, otp, 6)
		require.Len(t, gateway.messages, 1)
	})

	t.Run("Rejected When Already Verified", func(t *testing.T) {
		db, mock := newMockDB(t)
		service := NewOTPService(db, &fakeGateway{}, testLogger())

		mock.ExpectQuery("SELECT is_verified").
			WillReturnRows(sqlmock.NewRows([]string{"is_verified"}).AddRow(true))

		_, err := service.Resend(uuid.New())
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})
}
