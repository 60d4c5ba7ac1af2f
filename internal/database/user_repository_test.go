package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTime is a fixed timestamp for row fixtures
func testTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// newMockDB wraps sqlmock in the sqlx connection repositories run on
func newMockDB(t *testing.T) (DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec("INSERT INTO users").
			WithArgs(sqlmock.AnyArg(), "rahim", "rahim@example.com", "hashed", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		user, err := repo.CreateUser("rahim", "rahim@example.com", "hashed")
		require.NoError(t, err)
		assert.Equal(t, "rahim", user.Username)
		assert.NotEqual(t, uuid.Nil, user.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Username", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(fmt.Errorf(`pq: duplicate key value violates unique constraint "users_username_key"`))

		_, err := repo.CreateUser("rahim", "rahim@example.com", "hashed")
		assert.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("Database Error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(fmt.Errorf("connection refused"))

		_, err := repo.CreateUser("rahim", "rahim@example.com", "hashed")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateUser)
	})
}

func TestGetByUsername(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		userID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}).
			AddRow(userID, "rahim", "rahim@example.com", "hashed", testTime(), testTime())

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("rahim").
			WillReturnRows(rows)

		user, err := repo.GetByUsername("rahim")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "rahim@example.com", user.Email)
	})

	t.Run("User Not Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}))

		_, err := repo.GetByUsername("ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEnsureProfile(t *testing.T) {
	t.Run("Creates Missing Profile", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		userID := uuid.New()

		mock.ExpectExec("INSERT INTO user_profiles").
			WithArgs(sqlmock.AnyArg(), userID, "01712345678", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		rows := sqlmock.NewRows([]string{"id", "user_id", "phone_number", "is_verified", "otp", "created_at", "updated_at"}).
			AddRow(uuid.New(), userID, "01712345678", false, "", testTime(), testTime())
		mock.ExpectQuery("SELECT (.+) FROM user_profiles").
			WithArgs(userID).
			WillReturnRows(rows)

		profile, err := repo.EnsureProfile(userID, "01712345678")
		require.NoError(t, err)
		assert.Equal(t, userID, profile.UserID)
		assert.False(t, profile.IsVerified)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Existing Profile Untouched", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		userID := uuid.New()

		// ON CONFLICT DO NOTHING: zero rows affected, profile read back
		mock.ExpectExec("INSERT INTO user_profiles").
			WillReturnResult(sqlmock.NewResult(0, 0))

		rows := sqlmock.NewRows([]string{"id", "user_id", "phone_number", "is_verified", "otp", "created_at", "updated_at"}).
			AddRow(uuid.New(), userID, "01812345678", true, "", testTime(), testTime())
		mock.ExpectQuery("SELECT (.+) FROM user_profiles").
			WithArgs(userID).
			WillReturnRows(rows)

		profile, err := repo.EnsureProfile(userID, "01712345678")
		require.NoError(t, err)
		assert.Equal(t, "01812345678", profile.PhoneNumber)
		assert.True(t, profile.IsVerified)
	})
}

func TestIsPhoneVerified(t *testing.T) {
	t.Run("Verified", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		userID := uuid.New()

		mock.ExpectQuery("SELECT is_verified FROM user_profiles").
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"is_verified"}).AddRow(true))

		verified, err := repo.IsPhoneVerified(userID)
		require.NoError(t, err)
		assert.True(t, verified)
	})

	t.Run("No Profile", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery("SELECT is_verified FROM user_profiles").
			WillReturnRows(sqlmock.NewRows([]string{"is_verified"}))

		verified, err := repo.IsPhoneVerified(uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, verified)
	})
}
