package identity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/menu-backend/internal/apperr"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestPostgresCreateMapsUniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec("INSERT INTO identities").
		WithArgs("uid-1", "chef@example.com", "hash", "partner", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &Credential{
		UID: "uid-1", Email: "chef@example.com", PasswordHash: "hash", RoleClaim: "partner", CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, errDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresRepository(db)
	created := time.Date(2025, 5, 10, 19, 53, 7, 0, time.UTC)

	mock.ExpectQuery("SELECT uid, email, password_hash, role_claim, created_at\\s+FROM identities\\s+WHERE email").
		WithArgs("chef@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"uid", "email", "password_hash", "role_claim", "created_at"}).
			AddRow("uid-1", "chef@example.com", "hash", "partner", created))

	c, err := repo.GetByEmail(context.Background(), "chef@example.com")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", c.UID)
	assert.Equal(t, created, c.CreatedAt)

	mock.ExpectQuery("FROM identities").WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
