package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item sold through landing pages. PurchasePrice is the
// shop owner's cost, SellPrice is what customers pay.
type Product struct {
	ID            int64
	Name          string
	PurchasePrice decimal.Decimal
	SellPrice     decimal.Decimal
	Images        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Repository defines persistence operations for the product catalog.
// GetByIDs is the batched lookup the order pricing path depends on.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
