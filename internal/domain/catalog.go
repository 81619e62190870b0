package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products. Name is globally unique.
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// ProductCount is populated on reads; it is not a stored column.
	ProductCount int `json:"product_count" db:"-"`
}

// Product is a catalog entry. Name is globally unique, price is a
// positive decimal and stock a non-negative integer.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"image_url" db:"image_url"`
	Stock       int             `json:"stock" db:"stock"`
	CategoryID  uuid.UUID       `json:"category_id" db:"category_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	// Category is joined in on reads when available.
	Category *Category `json:"category,omitempty" db:"-"`
}

// InStock reports whether the product can currently be bought. Products
// with zero stock stay listed; the catalog never filters them out.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
