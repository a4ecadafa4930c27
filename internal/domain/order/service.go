package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shopfront/shopfront/internal/domain/product"
)

// PlaceOrderRequest holds the input for creating or editing an order. It
// deliberately carries no total: the total is always recomputed from catalog
// prices by the Pricer.
type PlaceOrderRequest struct {
	Customer       Customer
	Lines          []LineRequest
	ShippingCharge decimal.Decimal
	Status         Status
	LandingPageID  *int64
}

// Service implements the order lifecycle: checkout and admin create both go
// through Place, admin edit through Update. Every mutation re-prices from the
// current catalog and persists atomically.
type Service struct {
	pricer *Pricer
	orders Repository
}

// NewService creates an order Service pricing against the given catalog.
func NewService(products product.Repository, orders Repository) *Service {
	return &Service{
		pricer: NewPricer(products),
		orders: orders,
	}
}

// Place prices the requested lines and persists a new order. An empty status
// defaults to pending.
func (s *Service) Place(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if req.Status == "" {
		req.Status = StatusPending
	}
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	priced, err := s.pricer.PriceLines(ctx, req.Lines, req.ShippingCharge)
	if err != nil {
		return nil, err
	}

	o := &Order{
		Customer:       req.Customer,
		Items:          priced.Items,
		TotalPrice:     priced.Total,
		ShippingCharge: req.ShippingCharge,
		Status:         req.Status,
		LandingPageID:  req.LandingPageID,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Update re-prices every line from the current product state and replaces the
// order's line items wholesale; it is not a merge. If any referenced product
// no longer exists, the update fails before touching storage and the prior
// order state is left intact.
func (s *Service) Update(ctx context.Context, id int64, req PlaceOrderRequest) (*Order, error) {
	if req.Status == "" {
		req.Status = StatusPending
	}
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	priced, err := s.pricer.PriceLines(ctx, req.Lines, req.ShippingCharge)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:             id,
		Customer:       req.Customer,
		Items:          priced.Items,
		TotalPrice:     priced.Total,
		ShippingCharge: req.ShippingCharge,
		Status:         req.Status,
		LandingPageID:  req.LandingPageID,
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

// Get returns a single order with its line items.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns all orders with their line items.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// Delete removes an order and its line items.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}
