package sqlite

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bookgap/bookgap"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ bookgap.ProductService = (*ProductService)(nil)

// ProductService implements bookgap.ProductService using SQLite.
type ProductService struct {
	db *DB
}

// NewProductService creates a new ProductService.
func NewProductService(db *DB) *ProductService {
	return &ProductService{db: db}
}

// hashProduct computes xxHash over the fields that define a product's
// observed state, returned as a hex string. Re-scans of an unchanged
// listing produce the same hash.
func hashProduct(p *bookgap.Product) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s|%s|%.2f|%s|%s", p.ProductURL, p.Title, p.Price, p.Availability, p.Category)
	return hex.EncodeToString(h.Sum(nil))
}

// CreateProduct persists a product under a run.
func (s *ProductService) CreateProduct(ctx context.Context, product *bookgap.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if product.RunID == "" {
		return bookgap.Errorf(bookgap.EINVALID, "product run id required")
	}

	product.ID = uuid.New().String()
	if product.ScrapedAt.IsZero() {
		product.ScrapedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (
			id, run_id, title, price, currency, product_url, category,
			image_url, sku, review_count, average_rating, bsr, bsr_category,
			availability, discount_percentage, author, format,
			publication_date, language, content_hash, scraped_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, product.ID, product.RunID, product.Title, product.Price, product.Currency,
		product.ProductURL, product.Category, product.ImageURL, product.SKU,
		product.ReviewCount, product.AverageRating, product.BSR, product.BSRCategory,
		string(product.Availability), product.DiscountPercentage, product.Author,
		product.Format, product.PublicationDate, product.Language,
		hashProduct(product), product.ScrapedAt.Format(time.RFC3339))

	return err
}

// FindProducts retrieves products matching the filter.
func (s *ProductService) FindProducts(ctx context.Context, filter bookgap.ProductFilter) ([]*bookgap.Product, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT id, run_id, title, price, currency, product_url, category,
			image_url, sku, review_count, average_rating, bsr, bsr_category,
			availability, discount_percentage, author, format,
			publication_date, language, scraped_at
		FROM products WHERE 1=1`)

	if filter.RunID != nil {
		query.WriteString(" AND run_id = ?")
		args = append(args, *filter.RunID)
	}
	if filter.Category != nil {
		query.WriteString(" AND category = ?")
		args = append(args, *filter.Category)
	}

	query.WriteString(" ORDER BY scraped_at DESC, id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*bookgap.Product
	for rows.Next() {
		var p bookgap.Product
		var availability, scrapedAt string

		if err := rows.Scan(&p.ID, &p.RunID, &p.Title, &p.Price, &p.Currency,
			&p.ProductURL, &p.Category, &p.ImageURL, &p.SKU,
			&p.ReviewCount, &p.AverageRating, &p.BSR, &p.BSRCategory,
			&availability, &p.DiscountPercentage, &p.Author, &p.Format,
			&p.PublicationDate, &p.Language, &scrapedAt); err != nil {
			return nil, err
		}

		p.Availability = bookgap.Availability(availability)
		p.ScrapedAt, err = parseRFC3339(scrapedAt, "scraped_at")
		if err != nil {
			return nil, err
		}

		products = append(products, &p)
	}

	return products, rows.Err()
}

// DeleteProductsByRun removes all products for a run.
func (s *ProductService) DeleteProductsByRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE run_id = ?", runID)
	return err
}
