package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopfront/shopfront/internal/domain/landing"
	"github.com/shopfront/shopfront/internal/domain/product"
)

const (
	insertLandingPageSQL = `INSERT INTO landing_pages (name, slug)
		VALUES ($1, $2) RETURNING id, created_at`

	insertLandingPageProductSQL = `INSERT INTO landing_page_products (landing_page_id, product_id, description, faqs)
		VALUES ($1, $2, $3, $4)`

	getLandingPageBySlugSQL = `SELECT id, name, slug, created_at
		FROM landing_pages WHERE slug = $1`

	listLandingPagesSQL = `SELECT id, name, slug, created_at
		FROM landing_pages ORDER BY id`

	listLandingPageProductsSQL = `SELECT lpp.landing_page_id, lpp.product_id, lpp.description, lpp.faqs,
			p.id, p.name, p.purchase_price, p.sell_price, p.images, p.created_at, p.updated_at
		FROM landing_page_products lpp
		JOIN products p ON p.id = lpp.product_id
		WHERE lpp.landing_page_id = ANY($1)
		ORDER BY lpp.id`

	deleteLandingPageSQL = `DELETE FROM landing_pages WHERE id = $1`

	uniqueViolationCode = "23505"
)

var _ landing.Repository = (*LandingPageRepository)(nil)

// LandingPageRepository implements landing.Repository backed by PostgreSQL.
type LandingPageRepository struct {
	pool *pgxpool.Pool
}

// NewLandingPageRepository returns a LandingPageRepository that uses the
// given pool.
func NewLandingPageRepository(pool *pgxpool.Pool) *LandingPageRepository {
	return &LandingPageRepository{pool: pool}
}

// Create persists a page and its product entries atomically. A slug collision
// surfaces as landing.ErrSlugTaken.
func (r *LandingPageRepository) Create(ctx context.Context, p *landing.Page) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, insertLandingPageSQL, p.Name, p.Slug).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return landing.ErrSlugTaken
		}
		return fmt.Errorf("creating landing page: %w", err)
	}

	batch := &pgx.Batch{}
	for _, lp := range p.Products {
		batch.Queue(insertLandingPageProductSQL, p.ID, lp.ProductID, lp.Description, encodeFAQs(lp.FAQs))
	}
	br := tx.SendBatch(ctx, batch)
	for range p.Products {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("inserting products of landing page %d: %w", p.ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("inserting products of landing page %d: %w", p.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing landing page %d: %w", p.ID, err)
	}
	return nil
}

// GetBySlug returns a page by its public slug, including the related catalog
// products.
func (r *LandingPageRepository) GetBySlug(ctx context.Context, slug string) (*landing.Page, error) {
	rows, err := r.pool.Query(ctx, getLandingPageBySlugSQL, slug)
	if err != nil {
		return nil, fmt.Errorf("getting landing page %q: %w", slug, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanLandingPage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, landing.ErrNotFound
		}
		return nil, fmt.Errorf("getting landing page %q: %w", slug, err)
	}

	products, err := r.loadProducts(ctx, []int64{p.ID})
	if err != nil {
		return nil, err
	}
	p.Products = products[p.ID]
	return &p, nil
}

// List returns all pages with their products included.
func (r *LandingPageRepository) List(ctx context.Context) ([]landing.Page, error) {
	rows, err := r.pool.Query(ctx, listLandingPagesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing landing pages: %w", err)
	}

	pages, err := pgx.CollectRows(rows, scanLandingPage)
	if err != nil {
		return nil, fmt.Errorf("listing landing pages: %w", err)
	}
	if len(pages) == 0 {
		return pages, nil
	}

	ids := make([]int64, len(pages))
	for i, p := range pages {
		ids[i] = p.ID
	}
	products, err := r.loadProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range pages {
		pages[i].Products = products[pages[i].ID]
	}
	return pages, nil
}

// Delete removes a page; its product entries cascade.
func (r *LandingPageRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteLandingPageSQL, id)
	if err != nil {
		return fmt.Errorf("deleting landing page %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return landing.ErrNotFound
	}
	return nil
}

func (r *LandingPageRepository) loadProducts(ctx context.Context, pageIDs []int64) (map[int64][]landing.PageProduct, error) {
	rows, err := r.pool.Query(ctx, listLandingPageProductsSQL, pageIDs)
	if err != nil {
		return nil, fmt.Errorf("loading landing page products: %w", err)
	}
	defer rows.Close()

	products := make(map[int64][]landing.PageProduct, len(pageIDs))
	for rows.Next() {
		var (
			pageID int64
			lp     landing.PageProduct
			faqs   []byte
			prod   product.Product
		)
		err := rows.Scan(
			&pageID, &lp.ProductID, &lp.Description, &faqs,
			&prod.ID, &prod.Name, &prod.PurchasePrice, &prod.SellPrice, &prod.Images,
			&prod.CreatedAt, &prod.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning landing page product: %w", err)
		}
		if lp.FAQs, err = decodeFAQs(faqs); err != nil {
			return nil, fmt.Errorf("decoding faqs of landing page %d: %w", pageID, err)
		}
		lp.Product = &prod
		products[pageID] = append(products[pageID], lp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading landing page products: %w", err)
	}
	return products, nil
}

func scanLandingPage(row pgx.CollectableRow) (landing.Page, error) {
	var p landing.Page
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.CreatedAt)
	return p, err
}
