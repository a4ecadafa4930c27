package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status is the workflow state of an order. Delivered and cancelled are
// terminal for workflow purposes, but no transition guard is enforced: any of
// the three values is accepted on edit.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Customer holds the contact details embedded in an order.
type Customer struct {
	Name         string
	MobileNumber string
	Address      string
}

// LineItem is an immutable snapshot of one ordered product. Name and Price
// are copied from the product at order creation/update time and never
// re-synced, so later product edits do not alter past orders.
type LineItem struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Subtotal returns Price multiplied by Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is a placed customer order. TotalPrice always equals the sum of line
// subtotals plus ShippingCharge; it is computed server-side and never taken
// from a client.
type Order struct {
	ID             int64
	Customer       Customer
	Items          []LineItem
	TotalPrice     decimal.Decimal
	ShippingCharge decimal.Decimal
	Status         Status
	LandingPageID  *int64
	CreatedAt      time.Time
}

// Repository defines persistence operations for orders. Create and Update
// must write the order row and all line items atomically; Update replaces
// the full line item set.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id int64) error
}
