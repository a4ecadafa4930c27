package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopfront/shopfront/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (customer, total_price, shipping_charge, order_status, landing_page_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	updateOrderSQL = `UPDATE orders
		SET customer = $2, total_price = $3, shipping_charge = $4, order_status = $5, landing_page_id = $6
		WHERE id = $1 RETURNING created_at`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	deleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	getOrderSQL = `SELECT id, customer, total_price, shipping_charge, order_status, landing_page_id, created_at
		FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT id, customer, total_price, shipping_charge, order_status, landing_page_id, created_at
		FROM orders ORDER BY id`

	listOrderItemsSQL = `SELECT order_id, product_id, name, price, quantity
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. The order
// row and its line items are always written inside one transaction.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order with its line items atomically, filling in the
// generated ID and creation time.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, insertOrderSQL,
		encodeCustomer(o.Customer), o.TotalPrice, o.ShippingCharge, string(o.Status), o.LandingPageID,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %d: %w", o.ID, err)
	}
	return nil
}

// Update rewrites the order row and replaces all of its line items in one
// transaction. Nothing is written when the order does not exist.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, updateOrderSQL,
		o.ID, encodeCustomer(o.Customer), o.TotalPrice, o.ShippingCharge, string(o.Status), o.LandingPageID,
	).Scan(&o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.ErrNotFound
		}
		return fmt.Errorf("updating order %d: %w", o.ID, err)
	}

	if _, err := tx.Exec(ctx, deleteOrderItemsSQL, o.ID); err != nil {
		return fmt.Errorf("clearing items of order %d: %w", o.ID, err)
	}

	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %d: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	items, err := r.loadItems(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return &o, nil
}

// List returns all orders with their line items, using one query for the
// orders and one for all items.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// Delete removes an order; line items go with it via ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID int64, items []order.LineItem) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(insertOrderItemSQL, orderID, it.ProductID, it.Name, it.Price, it.Quantity)
	}

	br := tx.SendBatch(ctx, batch)
	for range items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("inserting items of order %d: %w", orderID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("inserting items of order %d: %w", orderID, err)
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]order.LineItem, error) {
	rows, err := r.pool.Query(ctx, listOrderItemsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("loading order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]order.LineItem, len(orderIDs))
	for rows.Next() {
		var (
			orderID int64
			it      order.LineItem
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		items[orderID] = append(items[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading order items: %w", err)
	}
	return items, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		customer []byte
		status   string
	)
	err := row.Scan(&o.ID, &customer, &o.TotalPrice, &o.ShippingCharge, &status, &o.LandingPageID, &o.CreatedAt)
	if err != nil {
		return o, err
	}

	o.Status = order.Status(status)
	o.Customer, err = decodeCustomer(customer)
	return o, err
}
