// Package cart models the session-local shopping cart. The cart is not
// persisted server side; it exists so checkout math and cart transitions
// have one tested implementation instead of ad hoc arithmetic in clients.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ShippingFee is the flat per-order shipping charge.
	ShippingFee = decimal.NewFromInt(5)

	// TaxRate is applied to the subtotal only, not to shipping.
	TaxRate = decimal.NewFromFloat(0.05)
)

// Item is one cart line. Price and Name are snapshots taken when the
// product was added.
type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
}

// Cart is an immutable value; every transition returns a new cart and
// leaves the receiver untouched. Invariant: every line has quantity >= 1.
type Cart struct {
	items []Item
}

// New returns an empty cart.
func New() Cart {
	return Cart{}
}

// Items returns a copy of the cart lines.
func (c Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct lines.
func (c Cart) Len() int {
	return len(c.items)
}

// Add merges an item into the cart. An existing line for the same
// product has its quantity increased; otherwise a new line is appended.
// Non-positive quantities are treated as 1.
func (c Cart) Add(item Item) Cart {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	next := c.clone()
	for i := range next.items {
		if next.items[i].ProductID == item.ProductID {
			next.items[i].Quantity += item.Quantity
			return next
		}
	}
	next.items = append(next.items, item)
	return next
}

// Remove drops the line for the given product, if present.
func (c Cart) Remove(productID uuid.UUID) Cart {
	next := Cart{}
	for _, it := range c.items {
		if it.ProductID != productID {
			next.items = append(next.items, it)
		}
	}
	return next
}

// SetQuantity replaces a line's quantity. A quantity below 1 removes the
// line, preserving the quantity >= 1 invariant.
func (c Cart) SetQuantity(productID uuid.UUID, quantity int) Cart {
	if quantity < 1 {
		return c.Remove(productID)
	}

	next := c.clone()
	for i := range next.items {
		if next.items[i].ProductID == productID {
			next.items[i].Quantity = quantity
			break
		}
	}
	return next
}

// Clear empties the cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// Subtotal is the sum of price times quantity over all lines.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Totals is the checkout summary derived from a cart.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Totals computes the order total: subtotal plus flat shipping plus tax
// at TaxRate of the subtotal, rounded to cents.
func (c Cart) Totals() Totals {
	subtotal := c.Subtotal()
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Shipping: ShippingFee,
		Tax:      tax,
		Total:    subtotal.Add(ShippingFee).Add(tax),
	}
}

func (c Cart) clone() Cart {
	next := Cart{items: make([]Item, len(c.items))}
	copy(next.items, c.items)
	return next
}
