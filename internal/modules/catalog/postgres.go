package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/georgemunganga/menu-backend/internal/apperr"
)

type postgresRepo struct{ db *sqlx.DB }

func NewPostgresRepository(db *sqlx.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateCategory(ctx context.Context, c *Category) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO categories (id, name, partner_id, created_at)
		VALUES (:id, :name, :partner_id, :created_at)`, c)
	return err
}

func (r *postgresRepo) ListCategories(ctx context.Context, partnerID string) ([]*Category, error) {
	query := `SELECT id, name, partner_id, created_at FROM categories`
	args := []interface{}{}
	if partnerID != "" {
		query += ` WHERE partner_id = $1`
		args = append(args, partnerID)
	}
	query += ` ORDER BY created_at`

	categories := []*Category{}
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, err
	}
	return categories, nil
}

const itemColumns = `id, name, price, description, category, image, must_try, partner_id, created_at, updated_at`

func (r *postgresRepo) CreateItem(ctx context.Context, it *Item) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (:id, :name, :price, :description, :category, :image, :must_try, :partner_id, :created_at, :updated_at)`, it)
	return err
}

func (r *postgresRepo) GetItem(ctx context.Context, id string) (*Item, error) {
	it := &Item{}
	err := r.db.GetContext(ctx, it, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("item not found")
		}
		return nil, err
	}
	return it, nil
}

func (r *postgresRepo) ListItems(ctx context.Context, partnerID string) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	args := []interface{}{}
	if partnerID != "" {
		query += ` WHERE partner_id = $1`
		args = append(args, partnerID)
	}
	query += ` ORDER BY created_at`

	items := []*Item{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresRepo) UpdateItem(ctx context.Context, it *Item) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE items
		SET name = :name, price = :price, description = :description, category = :category,
		    image = :image, must_try = :must_try, updated_at = :updated_at
		WHERE id = :id`, it)
	if err != nil {
		return err
	}
	return expectRow(res, "item not found")
}

func (r *postgresRepo) DeleteItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(res, "item not found")
}

func expectRow(res sql.Result, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(msg)
	}
	return nil
}
