// Package inventory guarantees stock never goes negative and exposes the
// decrement primitive order creation runs inside its transaction.
package inventory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bazarly/bazarly-backend/internal/domain"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so ledger operations can
// join the caller's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// CheckAvailability reports whether the product currently has at least qty
// units. It is advisory: the authoritative guard is the conditional update
// in Decrement, re-evaluated under the order-creation transaction.
func (l *Ledger) CheckAvailability(ctx context.Context, productID string, qty int) error {
	var inventory int
	err := l.db.QueryRowContext(ctx, `
		SELECT inventory FROM products WHERE id = $1
	`, productID).Scan(&inventory)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}

	if inventory < qty {
		return ErrInsufficientStock
	}

	return nil
}

// Decrement atomically subtracts qty from the product's inventory, failing
// without any write if the result would go negative. Run it with the
// enclosing order-creation transaction so a failure rolls everything back.
func (l *Ledger) Decrement(ctx context.Context, tx DBTX, productID string, qty int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE products
		SET inventory = inventory - $2, updated_at = NOW()
		WHERE id = $1 AND inventory >= $2
	`, productID, qty)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (l *Ledger) GetStock(ctx context.Context, productID string) (*domain.StockLevel, error) {
	stock := &domain.StockLevel{}

	err := l.db.QueryRowContext(ctx, `
		SELECT id, inventory FROM products WHERE id = $1
	`, productID).Scan(&stock.ProductID, &stock.Inventory)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return stock, nil
}

func (l *Ledger) ListStock(ctx context.Context) ([]domain.StockLevel, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, inventory FROM products ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var levels []domain.StockLevel
	for rows.Next() {
		var stock domain.StockLevel
		if err := rows.Scan(&stock.ProductID, &stock.Inventory); err != nil {
			return nil, err
		}
		levels = append(levels, stock)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return levels, nil
}
