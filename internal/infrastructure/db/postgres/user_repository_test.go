package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub/auth-server/internal/core/domain"
)

var cols = []string{"id", "name", "email", "password_hash", "is_active", "role", "refresh_token", "refresh_token_expiry"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	user := &domain.User{ID: "u1", Name: "Alice", Email: "alice@x.io", PasswordHash: "h", IsActive: true, Role: domain.RoleAdmin}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("u1", "Alice", "alice@x.io", "h", true, "Admin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "alice@x.io"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	exp := time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("alice@x.io").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "Alice", "alice@x.io", "h", true, "admin", "rt", exp))

	u, err := repo.FindByEmail(context.Background(), "alice@x.io")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	require.NotNil(t, u.RefreshToken)
	assert.Equal(t, "rt", *u.RefreshToken)
	assert.True(t, u.RefreshTokenExpiry.Equal(exp))
}

func TestUserRepository_FindByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_FindWithoutSession(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "Alice", "alice@x.io", "h", true, "User", nil, nil))

	u, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, u.RefreshToken)
	assert.Nil(t, u.RefreshTokenExpiry)
}

func TestUserRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM users ORDER BY created_at`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "Alice", "alice@x.io", "h", true, "User", nil, nil).
			AddRow("u2", "Bob", "bob@x.io", "h", false, "Admin", nil, nil))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.False(t, users[1].IsActive)
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`UPDATE users\s+SET name`).
		WithArgs("u9", "N", "n@x.io", "h", "User").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.User{ID: "u9", Name: "N", Email: "n@x.io", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_SetAndClearRefreshToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	exp := time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE users SET refresh_token = \$2`).
		WithArgs("u1", "rt", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET refresh_token = NULL`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetRefreshToken(context.Background(), "u1", "rt", exp))
	require.NoError(t, repo.ClearRefreshToken(context.Background(), "u1"))
}

func TestUserRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`DELETE FROM users`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u1"), domain.ErrUserNotFound)
}

func TestUserRepository_RotateRefreshToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(domain.RefreshTokenTTL)

	mock.ExpectQuery(`UPDATE users\s+SET refresh_token = \$1, refresh_token_expiry = \$2\s+WHERE refresh_token = \$3 AND refresh_token_expiry >= \$4\s+RETURNING`).
		WithArgs("next", exp, "current", now).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "Alice", "alice@x.io", "h", true, "User", "next", exp))

	u, err := repo.RotateRefreshToken(context.Background(), "current", "next", exp, now)
	require.NoError(t, err)
	assert.Equal(t, "next", *u.RefreshToken)
}

func TestUserRepository_RotateRefreshTokenStale(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE users\s+SET refresh_token`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.RotateRefreshToken(context.Background(), "used", "next", now.Add(time.Hour), now)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredRefreshToken)
}

func TestUserRepository_RotateRefreshTokenDriverError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE users\s+SET refresh_token`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.RotateRefreshToken(context.Background(), "rt", "next", now, now)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidOrExpiredRefreshToken)
}

func TestAuditRepository_InsertEvent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAuditRepository(db)
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO session_events`).
		WithArgs("u1", "login", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.InsertEvent(context.Background(), domain.SessionEvent{UserID: "u1", Kind: domain.EventLogin, At: at}))
}
