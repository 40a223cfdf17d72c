package identity

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/georgemunganga/menu-backend/internal/apperr"
)

var errDuplicateEmail = errors.New("email already registered")

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL credential repository.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, c *Credential) error {
	query := `
		INSERT INTO identities (uid, email, password_hash, role_claim, created_at)
		VALUES (:uid, :email, :password_hash, :role_claim, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, c)
	if isUniqueViolation(err) {
		return errDuplicateEmail
	}
	return err
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*Credential, error) {
	c := &Credential{}
	query := `
		SELECT uid, email, password_hash, role_claim, created_at
		FROM identities
		WHERE email = $1
	`
	if err := r.db.GetContext(ctx, c, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("identity not found")
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresRepository) GetByUID(ctx context.Context, uid string) (*Credential, error) {
	c := &Credential{}
	query := `
		SELECT uid, email, password_hash, role_claim, created_at
		FROM identities
		WHERE uid = $1
	`
	if err := r.db.GetContext(ctx, c, query, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("identity not found")
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresRepository) Delete(ctx context.Context, uid string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM identities WHERE uid = $1`, uid)
	return err
}

// isUniqueViolation recognises SQLSTATE 23505 from either lib/pq or pgx.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
