// Command seed-db populates a fresh database with demo products, a demo
// landing page, and an initial admin account for the dashboard.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopfront/shopfront/internal/domain/auth"
	"github.com/shopfront/shopfront/internal/domain/landing"
	"github.com/shopfront/shopfront/internal/domain/product"
	"github.com/shopfront/shopfront/internal/repository"
)

func main() {
	var (
		databaseURL   string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "email for the seeded admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account (or SHOP_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("SHOP_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or SHOP_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products, err := seedProducts(ctx, repository.NewProductRepository(pool))
	if err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedLandingPage(ctx, repository.NewLandingPageRepository(pool), products); err != nil {
		return errors.Wrap(err, "seed landing page")
	}

	if err := seedAdmin(ctx, repository.NewAdminRepository(pool), adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository) ([]*product.Product, error) {
	demo := []*product.Product{
		{
			Name:          "Premium Basmati Rice 5kg",
			PurchasePrice: decimal.NewFromInt(550),
			SellPrice:     decimal.NewFromInt(750),
			Images:        []string{"https://images.example.com/products/basmati-5kg.jpg"},
		},
		{
			Name:          "Chinigura Aromatic Rice 1kg",
			PurchasePrice: decimal.NewFromInt(120),
			SellPrice:     decimal.NewFromInt(165),
			Images:        []string{"https://images.example.com/products/chinigura-1kg.jpg"},
		},
		{
			Name:          "Miniket Rice 25kg",
			PurchasePrice: decimal.NewFromInt(1650),
			SellPrice:     decimal.NewFromInt(1950),
			Images: []string{
				"https://images.example.com/products/miniket-25kg-front.jpg",
				"https://images.example.com/products/miniket-25kg-back.jpg",
			},
		},
	}

	slog.Info("inserting products", slog.Int("count", len(demo)))

	for _, p := range demo {
		if err := repo.Create(ctx, p); err != nil {
			return nil, errors.Wrapf(err, "insert product %q", p.Name)
		}
		slog.Info("inserted product", slog.Int64("id", p.ID), slog.String("name", p.Name))
	}

	return demo, nil
}

func seedLandingPage(ctx context.Context, repo *repository.LandingPageRepository, products []*product.Product) error {
	slog.Info("inserting demo landing page")

	page := &landing.Page{
		Name: "Weekly Rice Deals",
		Slug: "weekly-rice-deals",
		Products: []landing.PageProduct{
			{
				ProductID:   products[0].ID,
				Description: "Long grain basmati, aged for aroma. Free delivery this week.",
				FAQs: []landing.FAQ{
					{Question: "Is this the current season's harvest?", Answer: "Yes, packed within the last month."},
					{Question: "How should I store it?", Answer: "Keep it in an airtight container away from sunlight."},
				},
			},
			{
				ProductID:   products[1].ID,
				Description: "Fragrant chinigura for polao and biryani.",
			},
		},
	}

	if err := repo.Create(ctx, page); err != nil {
		if errors.Is(err, landing.ErrSlugTaken) {
			slog.Info("landing page already seeded", slog.String("slug", page.Slug))
			return nil
		}
		return err
	}

	slog.Info("inserted landing page", slog.Int64("id", page.ID), slog.String("slug", page.Slug))
	return nil
}

func seedAdmin(ctx context.Context, repo *repository.AdminRepository, email, password string) error {
	slog.Info("inserting admin account", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	admin := &auth.Admin{
		Name:         "Store Admin",
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := repo.Create(ctx, admin); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			slog.Info("admin already seeded", slog.String("email", email))
			return nil
		}
		return err
	}

	slog.Info("inserted admin", slog.Int64("id", admin.ID), slog.String("email", email))
	return nil
}
