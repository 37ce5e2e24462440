// Package catalog is the product CRUD slice of the generic query layer:
// search, filter, paginate, sort over products.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bazarly/bazarly-backend/internal/api"
	"github.com/bazarly/bazarly-backend/internal/domain"
)

var ErrNotFound = errors.New("product not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, shop_id, name, price, inventory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, product.ID, product.ShopID, product.Name, product.Price, product.Inventory, product.CreatedAt)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product := &domain.Product{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, shop_id, name, price, inventory, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(
		&product.ID, &product.ShopID, &product.Name, &product.Price,
		&product.Inventory, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return product, nil
}

type ListFilter struct {
	SearchTerm string
	ShopID     string
}

func (r *Repository) List(ctx context.Context, filter ListFilter, opts api.PageOptions) ([]domain.Product, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}

	if filter.SearchTerm != "" {
		args = append(args, "%"+filter.SearchTerm+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.ShopID != "" {
		args = append(args, filter.ShopID)
		conditions = append(conditions, fmt.Sprintf("shop_id = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, shop_id, name, price, inventory, created_at, updated_at
		FROM products
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, opts.SortBy, opts.SortOrder, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		err := rows.Scan(
			&product.ID, &product.ShopID, &product.Name, &product.Price,
			&product.Inventory, &product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update applies a partial edit. Setting inventory here is the catalog
// path and is independent of ledger decrements.
type Update struct {
	Name      *string
	Price     *float64
	Inventory *int
}

func (r *Repository) Update(ctx context.Context, id string, upd Update) (*domain.Product, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		addSet("name", *upd.Name)
	}
	if upd.Price != nil {
		addSet("price", *upd.Price)
	}
	if upd.Inventory != nil {
		addSet("inventory", *upd.Inventory)
	}

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $1", strings.Join(sets, ", "))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
