package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bazarly/bazarly-backend/internal/api"
	"github.com/bazarly/bazarly-backend/internal/domain"
	"github.com/bazarly/bazarly-backend/internal/inventory"
)

var (
	ErrNotFound = errors.New("order not found")

	// ErrStatusConflict is returned when a status transition targets an
	// order already settled with a different terminal outcome.
	ErrStatusConflict = errors.New("order already in a terminal state")

	// ErrNotDeletable is returned when deleting an order whose payment has
	// progressed past PENDING.
	ErrNotDeletable = errors.New("order can no longer be deleted")
)

type Repository struct {
	db     *sql.DB
	ledger *inventory.Ledger
}

func NewRepository(db *sql.DB, ledger *inventory.Ledger) *Repository {
	return &Repository{db: db, ledger: ledger}
}

// CreatePending persists the order and its items and decrements inventory
// for every line, all inside one transaction. Any inventory shortfall
// aborts the whole write; no partial decrements survive.
func (r *Repository) CreatePending(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()
	order.Status = domain.OrderStatusPending
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, shop_id, tran_id, payment_method, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, order.ID, order.UserID, order.ShopID, order.TranID, order.PaymentMethod, order.TotalAmount, order.Status, order.CreatedAt)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), order.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return err
		}

		if err := r.ledger.Decrement(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("product %s: %w", item.ProductID, err)
		}
	}

	return tx.Commit()
}

// Settle moves the order identified by tranID into the given terminal
// status. The transition is a single conditional update: PENDING may move
// to any terminal state, and repeating the same terminal outcome is a
// no-op success. A different terminal outcome returns ErrStatusConflict.
func (r *Repository) Settle(ctx context.Context, tranID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("settle to non-terminal status %q", status)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE tran_id = $1 AND status IN ($3, $2)
	`, tranID, status, domain.OrderStatusPending)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		var current domain.OrderStatus
		err := r.db.QueryRowContext(ctx, `
			SELECT status FROM orders WHERE tran_id = $1
		`, tranID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrStatusConflict, current)
	}

	return r.GetByTranID(ctx, tranID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getBy(ctx, "id", id)
}

func (r *Repository) GetByTranID(ctx context.Context, tranID string) (*domain.Order, error) {
	return r.getBy(ctx, "tran_id", tranID)
}

func (r *Repository) getBy(ctx context.Context, column, value string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, shop_id, tran_id, payment_method, total_amount, status, is_deleted, created_at, updated_at
		FROM orders
		WHERE %s = $1
	`, column), value).Scan(
		&order.ID, &order.UserID, &order.ShopID, &order.TranID, &order.PaymentMethod,
		&order.TotalAmount, &order.Status, &order.IsDeleted, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
	`, order.ID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

type ListFilter struct {
	UserID string
	ShopID string
	Status domain.OrderStatus
}

// List returns a page of non-deleted orders plus the total match count.
// Items are loaded in a single batched query.
func (r *Repository) List(ctx context.Context, filter ListFilter, opts api.PageOptions) ([]domain.Order, int, error) {
	conditions := []string{"is_deleted = FALSE"}
	args := []any{}

	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addFilter("user_id", filter.UserID)
	addFilter("shop_id", filter.ShopID)
	addFilter("status", string(filter.Status))

	where := strings.Join(conditions, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, shop_id, tran_id, payment_method, total_amount, status, is_deleted, created_at, updated_at
		FROM orders
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

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		err := rows.Scan(
			&order.ID, &order.UserID, &order.ShopID, &order.TranID, &order.PaymentMethod,
			&order.TotalAmount, &order.Status, &order.IsDeleted, &order.CreatedAt, &order.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, total, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, 0, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, 0, err
	}

	result := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, *orderMap[id])
	}

	return result, total, nil
}

// UpdateStatus is the administrative status edit. It honors the same
// monotonic rule as Settle: a terminal status is never overwritten.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ($3, $2)
	`, id, status, domain.OrderStatusPending)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		var current domain.OrderStatus
		err := r.db.QueryRowContext(ctx, `
			SELECT status FROM orders WHERE id = $1
		`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrStatusConflict, current)
	}

	return r.GetByID(ctx, id)
}

// SoftDelete flags a PENDING order as deleted. Orders whose payment has
// progressed past PENDING are kept for audit and return ErrNotDeletable.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND is_deleted = FALSE
	`, id, domain.OrderStatusPending)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var isDeleted bool
		err := r.db.QueryRowContext(ctx, `
			SELECT is_deleted FROM orders WHERE id = $1
		`, id).Scan(&isDeleted)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if isDeleted {
			return ErrNotFound
		}
		return ErrNotDeletable
	}

	return nil
}
