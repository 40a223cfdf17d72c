package partner

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/georgemunganga/menu-backend/internal/apperr"
)

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL partner repository.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, p *Partner) error {
	query := `
		INSERT INTO partners (id, email, phone, shop_name, location, role, created_at)
		VALUES (:id, :email, :phone, :shop_name, :location, :role, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, p)
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Partner, error) {
	p := &Partner{}
	query := `
		SELECT id, email, phone, shop_name, location, role, created_at
		FROM partners
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("partner not found")
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]*Partner, error) {
	partners := []*Partner{}
	query := `
		SELECT id, email, phone, shop_name, location, role, created_at
		FROM partners
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &partners, query); err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("partner not found")
	}
	return nil
}

func (r *postgresRepository) DeleteLegacyRole(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE uid = $1`, id)
	return err
}
