package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type postgresRoleStore struct {
	db *sqlx.DB
}

// NewPostgresRoleStore reads the role embedded in partners first and falls
// back to the legacy roles table.
func NewPostgresRoleStore(db *sqlx.DB) RoleStore {
	return &postgresRoleStore{db: db}
}

func (s *postgresRoleStore) Lookup(ctx context.Context, uid string) (RoleRecord, error) {
	var role string
	err := s.db.GetContext(ctx, &role, `SELECT role FROM partners WHERE id = $1`, uid)
	switch {
	case err == nil:
		return RoleRecord{Source: SourceEmbedded, Role: role}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return RoleRecord{}, err
	}

	err = s.db.GetContext(ctx, &role, `SELECT role FROM roles WHERE uid = $1`, uid)
	switch {
	case err == nil:
		return RoleRecord{Source: SourceLegacy, Role: role}, nil
	case errors.Is(err, sql.ErrNoRows):
		return RoleRecord{Source: SourceNone}, nil
	default:
		return RoleRecord{}, err
	}
}
