package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shopfront/shopfront/internal/domain/product"
)

// Sentinel errors for line request validation.
var (
	ErrEmptyLines       = errors.New("at least one line item is required")
	ErrNegativeShipping = errors.New("shipping charge cannot be negative")
	ErrInvalidStatus    = errors.New("invalid order status")
)

// ProductNotFoundError indicates a requested product does not exist. The
// whole pricing operation fails; no partial snapshots are produced.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InvalidQuantityError indicates a line request with a quantity below 1.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %d", e.ProductID)
}

// LineRequest is an untrusted (product, quantity) pair submitted by a client.
// Any price the client may have displayed alongside it is ignored.
type LineRequest struct {
	ProductID int64
	Quantity  int
}

// PricedLines is the result of pricing a set of requested lines.
type PricedLines struct {
	Items []LineItem
	// Total is the verified grand total: sum of line subtotals plus shipping.
	Total decimal.Decimal
}

// Pricer converts untrusted line requests into trustworthy snapshots priced
// from the current product catalog. It has no side effects beyond the product
// lookup; persistence is the caller's concern.
type Pricer struct {
	products product.Repository
}

// NewPricer returns a Pricer reading prices from the given catalog.
func NewPricer(products product.Repository) *Pricer {
	return &Pricer{products: products}
}

// PriceLines resolves each requested line against the current catalog in one
// batched lookup, builds per-line snapshots from the current name and sell
// price, and computes the verified total including shipping.
//
// Duplicate product IDs across lines are allowed and produce separate
// snapshot lines: the storefront cart appends a row per add and the pricing
// pass mirrors that. De-duplication, if ever wanted, belongs upstream.
func (p *Pricer) PriceLines(ctx context.Context, lines []LineRequest, shipping decimal.Decimal) (*PricedLines, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyLines
	}
	if shipping.IsNegative() {
		return nil, ErrNegativeShipping
	}

	// Validate quantities and collect distinct product IDs for the batch.
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, ln := range lines {
		if ln.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductID: ln.ProductID}
		}
		if _, ok := seen[ln.ProductID]; ok {
			continue
		}
		seen[ln.ProductID] = struct{}{}
		ids = append(ids, ln.ProductID)
	}

	fetched, err := p.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[int64]product.Product, len(fetched))
	for _, prod := range fetched {
		byID[prod.ID] = prod
	}

	items := make([]LineItem, len(lines))
	total := decimal.Zero
	for i, ln := range lines {
		prod, ok := byID[ln.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: ln.ProductID}
		}

		items[i] = LineItem{
			ProductID: prod.ID,
			Name:      prod.Name,
			Price:     prod.SellPrice,
			Quantity:  ln.Quantity,
		}
		total = total.Add(items[i].Subtotal())
	}

	return &PricedLines{
		Items: items,
		Total: total.Add(shipping).Round(2),
	}, nil
}
