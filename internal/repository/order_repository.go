package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	// CompletePayment applies the single PENDING -> COMPLETED payment
	// transition (and PENDING -> PROCESSING on the order), returning
	// whether the row was actually updated. A replayed call finds no
	// pending row and reports applied=false with no state change.
	CompletePayment(ctx context.Context, orderID uuid.UUID, paymentID string) (applied bool, err error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts an order and its line items in a single transaction
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (
			id, user_id,
			shipping_name, shipping_line1, shipping_line2, shipping_city,
			shipping_state, shipping_postal_code, shipping_country, shipping_phone,
			subtotal, shipping_fee, tax, total,
			payment_id, payment_status, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = tx.ExecContext(
		ctx,
		orderQuery,
		order.ID,
		order.UserID,
		order.ShippingAddress.Name,
		order.ShippingAddress.Line1,
		order.ShippingAddress.Line2,
		order.ShippingAddress.City,
		order.ShippingAddress.State,
		order.ShippingAddress.PostalCode,
		order.ShippingAddress.Country,
		order.ShippingAddress.Phone,
		order.Subtotal,
		order.ShippingFee,
		order.Tax,
		order.Total,
		order.PaymentID,
		order.PaymentStatus,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i := range order.Items {
		item := &order.Items[i]
		_, err = tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			order.ID,
			item.ProductID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// FindByID retrieves an order with its line items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, user_id,
		       shipping_name, shipping_line1, shipping_line2, shipping_city,
		       shipping_state, shipping_postal_code, shipping_country, shipping_phone,
		       subtotal, shipping_fee, tax, total,
		       payment_id, payment_status, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.ShippingAddress.Name,
		&order.ShippingAddress.Line1,
		&order.ShippingAddress.Line2,
		&order.ShippingAddress.City,
		&order.ShippingAddress.State,
		&order.ShippingAddress.PostalCode,
		&order.ShippingAddress.Country,
		&order.ShippingAddress.Phone,
		&order.Subtotal,
		&order.ShippingFee,
		&order.Tax,
		&order.Total,
		&order.PaymentID,
		&order.PaymentStatus,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListByUser retrieves a user's orders, newest first, with line items
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id,
		       shipping_name, shipping_line1, shipping_line2, shipping_city,
		       shipping_state, shipping_postal_code, shipping_country, shipping_phone,
		       subtotal, shipping_fee, tax, total,
		       payment_id, payment_status, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.ShippingAddress.Name,
			&order.ShippingAddress.Line1,
			&order.ShippingAddress.Line2,
			&order.ShippingAddress.City,
			&order.ShippingAddress.State,
			&order.ShippingAddress.PostalCode,
			&order.ShippingAddress.Country,
			&order.ShippingAddress.Phone,
			&order.Subtotal,
			&order.ShippingFee,
			&order.Tax,
			&order.Total,
			&order.PaymentID,
			&order.PaymentStatus,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

// CompletePayment records the payment id and advances both statuses,
// guarded on payment_status so the transition applies at most once.
func (r *orderRepository) CompletePayment(ctx context.Context, orderID uuid.UUID, paymentID string) (bool, error) {
	query := `
		UPDATE orders
		SET payment_id = $2, payment_status = $3, status = $4, updated_at = NOW()
		WHERE id = $1 AND payment_status = $5
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		orderID,
		paymentID,
		domain.PaymentStatusCompleted,
		domain.OrderStatusProcessing,
		domain.PaymentStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete payment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing order from an already-completed one.
		if _, err := r.FindByID(ctx, orderID); err != nil {
			return false, err
		}
		return false, nil
	}

	return true, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		item := domain.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
