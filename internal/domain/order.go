package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus tracks fulfilment. Only the PENDING -> PROCESSING step is
// driven by the payment flow; later steps are advanced by admin action.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

// PaymentStatus has a single allowed transition: PENDING -> COMPLETED.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// ShippingAddress is captured verbatim at checkout.
type ShippingAddress struct {
	Name       string `json:"name" db:"shipping_name"`
	Line1      string `json:"line1" db:"shipping_line1"`
	Line2      string `json:"line2" db:"shipping_line2"`
	City       string `json:"city" db:"shipping_city"`
	State      string `json:"state" db:"shipping_state"`
	PostalCode string `json:"postal_code" db:"shipping_postal_code"`
	Country    string `json:"country" db:"shipping_country"`
	Phone      string `json:"phone" db:"shipping_phone"`
}

// OrderItem is a line of an order. Name and UnitPrice are snapshots of
// the product at purchase time; later catalog edits do not touch them.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// LineTotal returns unit price times quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is created at checkout submission. Payment fields are mutated
// exactly once by signature verification.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Items           []OrderItem     `json:"items" db:"-"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shipping_fee" db:"shipping_fee"`
	Tax             decimal.Decimal `json:"tax" db:"tax"`
	Total           decimal.Decimal `json:"total" db:"total"`
	PaymentID       string          `json:"payment_id" db:"payment_id"`
	PaymentStatus   PaymentStatus   `json:"payment_status" db:"payment_status"`
	Status          OrderStatus     `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}
