package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository interface {
	// GetForSeller scopes the lookup to the owning seller. A missing row and
	// a row owned by someone else are indistinguishable to the caller, so
	// order existence never leaks across sellers.
	GetForSeller(ctx context.Context, orderID string, sellerID int64) (*domain.Order, error)

	// GetForSellerWithLock is the same lookup with a pessimistic row lock,
	// for the transition write path.
	GetForSellerWithLock(ctx context.Context, tx pgx.Tx, orderID string, sellerID int64) (*domain.Order, error)

	// UpdateDeliveryStatus writes the order's new status and tracking code
	// and propagates the status to every line item, in the caller's
	// transaction.
	UpdateDeliveryStatus(ctx context.Context, tx pgx.Tx, orderID string, status domain.DeliveryStatus, trackingCode *string) error

	ListItems(ctx context.Context, orderID string) ([]*domain.OrderItem, error)
	ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]*domain.Order, error)
}

type orderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepo(db *pgxpool.Pool) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `
	id, seller_id, customer_id, grand_total, delivery_status, payment_status,
	tracking_code, created_at, updated_at
`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.SellerID,
		&o.CustomerID,
		&o.GrandTotal,
		&o.DeliveryStatus,
		&o.PaymentStatus,
		&o.TrackingCode,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) GetForSeller(ctx context.Context, orderID string, sellerID int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND seller_id = $2`,
		orderID, sellerID)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (r *orderRepo) GetForSellerWithLock(ctx context.Context, tx pgx.Tx, orderID string, sellerID int64) (*domain.Order, error) {
	if tx == nil {
		return nil, errors.New("transaction cannot be nil for locked query")
	}

	row := tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND seller_id = $2 FOR UPDATE`,
		orderID, sellerID)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order with lock: %w", err)
	}
	return o, nil
}

func (r *orderRepo) UpdateDeliveryStatus(ctx context.Context, tx pgx.Tx, orderID string, status domain.DeliveryStatus, trackingCode *string) error {
	if tx == nil {
		return errors.New("transaction cannot be nil")
	}

	now := time.Now()
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET delivery_status = $1,
		    tracking_code = COALESCE($2, tracking_code),
		    updated_at = $3
		WHERE id = $4
	`, status, trackingCode, now, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	// Line items mirror the parent order; they carry no independent state.
	if _, err := tx.Exec(ctx,
		`UPDATE order_items SET delivery_status = $1 WHERE order_id = $2`,
		status, orderID); err != nil {
		return fmt.Errorf("failed to propagate status to order items: %w", err)
	}

	return nil
}

func (r *orderRepo) ListItems(ctx context.Context, orderID string) ([]*domain.OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, qty, price, delivery_status
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &it.Price, &it.DeliveryStatus); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *orderRepo) ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE seller_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
