// Package cart implements the in-memory shopping cart a storefront visitor
// fills before checkout. A Cart is owned by exactly one browsing session and
// is passed explicitly to the checkout flow; it never touches persistent
// storage and needs no synchronization.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/product"
)

// Item is one cart row: a product snapshot and a quantity.
type Item struct {
	Product  product.Product
	Quantity int
}

// Cart accumulates items during a storefront visit. Only the derived line
// requests survive into a submitted order.
type Cart struct {
	items []Item
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends a new row. Adding the same product twice yields two separate
// rows; rows are never merged, matching the append-only "add item" flow and
// the pricing pass downstream.
func (c *Cart) Add(p product.Product, quantity int) {
	c.items = append(c.items, Item{Product: p, Quantity: quantity})
}

// Increment raises the quantity of every row holding the product by one.
func (c *Cart) Increment(productID int64) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity++
		}
	}
}

// Decrement lowers the quantity of every row holding the product by one,
// clamped at 1. Use Remove to drop a product entirely.
func (c *Cart) Decrement(productID int64) {
	for i := range c.items {
		if c.items[i].Product.ID == productID && c.items[i].Quantity > 1 {
			c.items[i].Quantity--
		}
	}
}

// SetQuantity sets the quantity of every row holding the product.
func (c *Cart) SetQuantity(productID int64, quantity int) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity
		}
	}
}

// Remove drops all rows holding the product.
func (c *Cart) Remove(productID int64) {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.Product.ID != productID {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// Clear empties the cart. Called after a successful order placement.
func (c *Cart) Clear() {
	c.items = nil
}

// Len returns the number of rows in the cart.
func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a copy of the cart rows.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Subtotal sums sell price times quantity over all rows. It is display-only:
// the server recomputes the authoritative total at checkout.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Product.SellPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Lines derives the untrusted line requests submitted at checkout.
func (c *Cart) Lines() []order.LineRequest {
	lines := make([]order.LineRequest, len(c.items))
	for i, it := range c.items {
		lines[i] = order.LineRequest{ProductID: it.Product.ID, Quantity: it.Quantity}
	}
	return lines
}
