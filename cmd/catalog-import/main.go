// Command catalog-import bulk loads products from gzip-compressed CSV
// catalog feeds. Feeds from different suppliers overlap heavily, so rows are
// de-duplicated by product name with a bloom filter while files are parsed
// concurrently.
//
// Each CSV row is: name, purchase_price, sell_price, images
// where images is a pipe-separated list of URLs.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/shopfront/shopfront/internal/domain/product"
	"github.com/shopfront/shopfront/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
	rowFields     = 4
)

type row struct {
	file string
	line int
	p    product.Product
}

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no input files: pass one or more catalog .csv.gz paths")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return importFeeds(ctx, repository.NewProductRepository(pool), files)
}

// importFeeds parses the given feed files concurrently and streams the rows
// into a single writer.
func importFeeds(ctx context.Context, products product.Repository, files []string) error {
	// Parsers fan out over the input files; a single writer consumes rows so
	// the bloom filter needs no locking. Both sides share one errgroup context,
	// so a writer failure cancels the parsers instead of leaving them blocked
	// on a full channel.
	rows := make(chan row, 1024)

	g, ctx := errgroup.WithContext(ctx)

	parsers, parseCtx := errgroup.WithContext(ctx)
	for _, f := range files {
		parsers.Go(parseFile(parseCtx, f, rows))
	}
	g.Go(func() error {
		defer close(rows)
		return parsers.Wait()
	})
	g.Go(func() error {
		return writeProducts(ctx, products, rows)
	})

	return g.Wait()
}

func parseFile(ctx context.Context, path string, rows chan<- row) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		r := csv.NewReader(gz)
		r.FieldsPerRecord = rowFields
		r.ReuseRecord = true

		var count int
		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}

			count++
			p, err := parseRecord(record)
			if err != nil {
				slog.Warn("skipping malformed row",
					slog.String("file", path),
					slog.Int("line", count),
					slog.String("error", err.Error()),
				)
				continue
			}

			select {
			case rows <- row{file: path, line: count, p: p}:
			case <-ctx.Done():
				return ctx.Err()
			}

			if count%progressEvery == 0 {
				slog.Info("parse progress", slog.String("file", path), slog.Int("rows", count))
			}
		}

		slog.Info("parse complete", slog.String("file", path), slog.Int("rows", count))
		return nil
	}
}

func parseRecord(record []string) (product.Product, error) {
	name := strings.TrimSpace(record[0])
	if name == "" {
		return product.Product{}, errors.New("empty product name")
	}

	purchase, err := decimal.NewFromString(strings.TrimSpace(record[1]))
	if err != nil {
		return product.Product{}, errors.Wrap(err, "parse purchase price")
	}
	sell, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return product.Product{}, errors.Wrap(err, "parse sell price")
	}
	if purchase.IsNegative() || sell.IsNegative() {
		return product.Product{}, errors.New("negative price")
	}

	var images []string
	for _, img := range strings.Split(record[3], "|") {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if len(images) == 0 {
		return product.Product{}, errors.New("no image URLs")
	}

	return product.Product{
		Name:          name,
		PurchasePrice: purchase,
		SellPrice:     sell,
		Images:        images,
	}, nil
}

// writeProducts inserts rows until the channel closes, dropping rows whose
// name the bloom filter has already seen. A false positive drops a genuinely
// new product, which at the configured 0.1% rate is an acceptable trade for
// constant memory across feeds with tens of millions of rows.
func writeProducts(ctx context.Context, products product.Repository, rows <-chan row) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	var written, skipped int
	for r := range rows {
		if seen.TestAndAddString(strings.ToLower(r.p.Name)) {
			skipped++
			continue
		}

		p := r.p
		if err := products.Create(ctx, &p); err != nil {
			return errors.Wrapf(err, "insert product %q from %s:%d", p.Name, r.file, r.line)
		}

		written++
		if written%progressEvery == 0 {
			slog.Info("write progress", slog.Int("written", written), slog.Int("skipped", skipped))
		}
	}

	slog.Info("write complete", slog.Int("written", written), slog.Int("skipped", skipped))
	return nil
}
