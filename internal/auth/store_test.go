package auth

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func userRows(u *User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name",
		"is_active", "created_at", "last_login_at",
	}).AddRow(u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.IsActive, u.CreatedAt, u.LastLoginAt)
}

func TestStoreGetByEmail(t *testing.T) {
	store, mock := newStoreWithMock(t)
	want := &User{
		ID: 7, Email: "a@x.com", PasswordHash: "hash",
		FirstName: "A", LastName: "One", IsActive: true,
		CreatedAt: time.Now().UTC(),
	}
	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(userRows(want))

	got, err := store.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreGetByEmailNotFound(t *testing.T) {
	store, mock := newStoreWithMock(t)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStoreCreateUniqueViolation(t *testing.T) {
	store, mock := newStoreWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})

	u := &User{Email: "a@x.com", PasswordHash: "hash", FirstName: "A", LastName: "One", IsActive: true}
	err := store.Create(context.Background(), u)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestStoreTouchLastLogin(t *testing.T) {
	store, mock := newStoreWithMock(t)
	at := time.Now().UTC()
	mock.ExpectExec(`UPDATE users SET last_login_at = \$1 WHERE id = \$2`).
		WithArgs(at, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.TouchLastLogin(context.Background(), 7, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
