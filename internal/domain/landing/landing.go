package landing

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/shopfront/shopfront/internal/domain/product"
)

var (
	// ErrNotFound is returned when a requested landing page does not exist.
	ErrNotFound = errors.New("landing page not found")
	// ErrSlugTaken is returned when creating a page with a slug already in use.
	ErrSlugTaken = errors.New("slug already in use")
)

// FAQ is one question/answer pair shown under a landing page product.
type FAQ struct {
	Question string
	Answer   string
}

// PageProduct couples a catalog product with the marketing copy shown for it
// on a landing page.
type PageProduct struct {
	ProductID   int64
	Description string
	FAQs        []FAQ

	// Product is the live catalog record, populated on reads.
	Product *product.Product
}

// Page is a curated, shareable storefront page presenting a subset of
// products. Slug is unique and is the public URL key.
type Page struct {
	ID        int64
	Name      string
	Slug      string
	Products  []PageProduct
	CreatedAt time.Time
}

// Repository defines persistence operations for landing pages. Reads include
// the related catalog products.
type Repository interface {
	Create(ctx context.Context, p *Page) error
	List(ctx context.Context) ([]Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	Delete(ctx context.Context, id int64) error
}
