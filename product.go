package bookgap

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultOrigin is the site origin used to resolve relative product URLs.
const DefaultOrigin = "https://www.noon.com"

// DefaultCurrency is the currency assumed for prices on the source site.
const DefaultCurrency = "AED"

// Price bounds for a plausible book listing. Values outside this range are
// almost always parsing artifacts (order totals, SKU fragments, phone
// numbers) rather than prices.
const (
	MinPrice = 0.0 // exclusive
	MaxPrice = 10000.0
)

// MaxTitleLen is the upper bound, in characters, on any extracted title.
const MaxTitleLen = 200

// Availability represents a product's stock status.
type Availability string

// Availability states recognized on source pages.
const (
	AvailabilityUnknown    Availability = ""
	AvailabilityInStock    Availability = "In Stock"
	AvailabilityLowStock   Availability = "Low Stock"
	AvailabilityOutOfStock Availability = "Out of Stock"
)

// Product represents a canonical, validated book listing.
//
// ProductURL is the identity field: two products with equal normalized URLs
// are the same entity. All other optional fields may legitimately be absent;
// extraction is best-effort.
type Product struct {
	ID       string  `json:"id,omitempty"`
	RunID    string  `json:"runId,omitempty"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`

	// ProductURL is the normalized absolute URL and identity key.
	ProductURL string `json:"productUrl"`

	Category string `json:"category,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	SKU      string `json:"sku,omitempty"`

	// Review data.
	ReviewCount   *int     `json:"reviewCount,omitempty"`
	AverageRating *float64 `json:"averageRating,omitempty"`

	// Best Seller Rank. Lower rank = more popular. BSRCategory is the
	// category the rank applies within.
	BSR         *int   `json:"bsr,omitempty"`
	BSRCategory string `json:"bsrCategory,omitempty"`

	// Market demand signals.
	Availability       Availability `json:"availability,omitempty"`
	DiscountPercentage *float64     `json:"discountPercentage,omitempty"`

	// Competitive intelligence.
	Author          string `json:"author,omitempty"`
	Format          string `json:"format,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
	Language        string `json:"language,omitempty"`

	ScrapedAt time.Time `json:"scrapedAt"`
}

// Validate returns an error if the product contains invalid fields.
func (p *Product) Validate() error {
	if p.Title == "" {
		return Errorf(EINVALID, "product title required")
	}
	if utf8.RuneCountInString(p.Title) > MaxTitleLen {
		return Errorf(EINVALID, "product title exceeds %d characters", MaxTitleLen)
	}
	if p.Price <= MinPrice || p.Price > MaxPrice {
		return Errorf(EINVALID, "product price %.2f out of range", p.Price)
	}
	if p.ProductURL == "" {
		return Errorf(EINVALID, "product URL required")
	}
	if p.AverageRating != nil && (*p.AverageRating < 0 || *p.AverageRating > 5) {
		return Errorf(EINVALID, "average rating %.2f out of range", *p.AverageRating)
	}
	if p.DiscountPercentage != nil && (*p.DiscountPercentage < 0 || *p.DiscountPercentage > 100) {
		return Errorf(EINVALID, "discount percentage %.2f out of range", *p.DiscountPercentage)
	}
	if p.ReviewCount != nil && *p.ReviewCount < 0 {
		return Errorf(EINVALID, "review count must be non-negative")
	}
	if p.BSR != nil && *p.BSR < 1 {
		return Errorf(EINVALID, "best seller rank must be positive")
	}
	return nil
}

// Clone returns a deep copy of the product. Pointer-valued fields are
// copied so the clone can be modified without touching the original.
func (p *Product) Clone() *Product {
	other := *p
	if p.ReviewCount != nil {
		v := *p.ReviewCount
		other.ReviewCount = &v
	}
	if p.AverageRating != nil {
		v := *p.AverageRating
		other.AverageRating = &v
	}
	if p.BSR != nil {
		v := *p.BSR
		other.BSR = &v
	}
	if p.DiscountPercentage != nil {
		v := *p.DiscountPercentage
		other.DiscountPercentage = &v
	}
	return &other
}

// NormalizeProductURL rewrites a raw product URL to an absolute URL rooted
// at origin. Already-absolute URLs pass through unchanged. An empty origin
// falls back to DefaultOrigin. Returns "" for empty input.
func NormalizeProductURL(raw string, origin string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if origin == "" {
		origin = DefaultOrigin
	}
	origin = strings.TrimSuffix(origin, "/")
	switch {
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return raw
	case strings.HasPrefix(raw, "/"):
		return origin + raw
	default:
		return origin + "/" + raw
	}
}
