package goquery

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookgap/bookgap"
)

// Ensure ListingExtractor implements bookgap.ListingExtractor at compile time.
var _ bookgap.ListingExtractor = (*ListingExtractor)(nil)

// cardSelectors locate product-card elements on a listing page, in
// priority order. The first selector with any hits wins; mixing hits from
// several selectors would double-count cards.
var cardSelectors = []string{
	`[data-qa*="product"]`,
	`[class*="Product"]`,
	`[class*="product"]`,
	`a[href*="/uae-en/"]`,
	`[data-product-id]`,
	`[data-sku]`,
}

var cardTitleSelectors = []string{
	`[class*="title"]`,
	`[class*="name"]`,
	`h2`, `h3`, `h4`,
	`[data-qa*="title"]`,
	`[data-qa*="name"]`,
}

var cardPriceSelectors = []string{
	`[class*="price"]`,
	`[class*="Price"]`,
	`[data-qa*="price"]`,
	`[data-price]`,
}

var cardCategorySelectors = []string{
	`[class*="breadcrumb"] a`,
	`[class*="category"] a`,
	`[class*="Category"] a`,
	`nav[class*="breadcrumb"] a`,
	`ol[class*="breadcrumb"] a`,
	`[data-qa*="category"]`,
	`[data-category]`,
}

var cardDiscountSelectors = []string{
	`[class*="Discount"]`,
	`[class*="discount"]`,
	`[class*="sale"]`,
	`[class*="Sale"]`,
	`[class*="off"]`,
	`[class*="Off"]`,
	`[class*="percent"]`,
}

// Card title bounds. Navigation chrome is usually shorter than 5
// characters or concatenates far past 200.
const (
	minCardTitleLen = 5
	maxCardTitleLen = bookgap.MaxTitleLen
)

// ListingExtractor extracts products from listing/search-results pages.
// The zero value is not usable; use NewListingExtractor.
type ListingExtractor struct {
	origin string
	now    func() time.Time
}

// ListingOption configures a ListingExtractor.
type ListingOption func(*ListingExtractor)

// WithOrigin sets the site origin used to resolve relative product URLs.
// Defaults to bookgap.DefaultOrigin.
func WithOrigin(origin string) ListingOption {
	return func(e *ListingExtractor) {
		e.origin = origin
	}
}

// WithClock sets the time source for ScrapedAt stamps. Used by tests.
func WithClock(now func() time.Time) ListingOption {
	return func(e *ListingExtractor) {
		e.now = now
	}
}

// NewListingExtractor creates a new ListingExtractor.
func NewListingExtractor(opts ...ListingOption) *ListingExtractor {
	e := &ListingExtractor{
		origin: bookgap.DefaultOrigin,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractProducts parses a listing page and returns deduplicated products.
// Embedded JSON payloads and product-card markup are mined independently;
// every candidate passes through the completeness gate, and duplicates
// (by normalized product URL) are dropped first-seen-wins.
func (e *ListingExtractor) ExtractProducts(rawHTML string) ([]*bookgap.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, bookgap.Errorf(bookgap.EINVALID, "failed to parse HTML: %v", err)
	}

	now := e.now()
	var products []*bookgap.Product

	// Strategy 1: product-shaped objects in embedded JSON.
	for _, payload := range scriptPayloads(doc, listingScriptRe) {
		for _, cand := range bookgap.MineProducts(payload) {
			if p, ok := bookgap.AssembleProduct(cand, nil, e.origin, now); ok {
				products = append(products, p)
			}
		}
	}

	// Strategy 2: product cards in markup.
	for _, card := range e.findCards(doc) {
		cand := e.extractCard(card)
		if p, ok := bookgap.AssembleProduct(nil, cand, e.origin, now); ok {
			products = append(products, p)
		}
	}

	return bookgap.DedupeProducts(products), nil
}

// findCards returns product-card selections using the first card selector
// that matches anything.
func (e *ListingExtractor) findCards(doc *goquery.Document) []*goquery.Selection {
	for _, selector := range cardSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		cards := make([]*goquery.Selection, 0, found.Length())
		found.Each(func(_ int, sel *goquery.Selection) {
			cards = append(cards, sel)
		})
		return cards
	}
	return nil
}

// extractCard builds an HTML-provenance candidate from one card element.
// Each field is independently present or absent.
func (e *ListingExtractor) extractCard(card *goquery.Selection) *bookgap.CandidateRecord {
	c := bookgap.NewCandidate(bookgap.ProvenanceHTML)

	if title := e.cardTitle(card); title != "" {
		c.Set(bookgap.FieldTitle, title)
	}
	if price, ok := e.cardPrice(card); ok {
		c.Set(bookgap.FieldPrice, price)
	}
	if url := e.cardURL(card); url != "" {
		c.Set(bookgap.FieldProductURL, url)
	}
	if category := e.cardCategory(card); category != "" {
		c.Set(bookgap.FieldCategory, category)
	}
	if img := e.cardImage(card); img != "" {
		c.Set(bookgap.FieldImageURL, img)
	}
	if sku := firstAttr(card, "data-sku", "data-product-id", "id"); sku != "" {
		c.Set(bookgap.FieldSKU, sku)
	}

	text := collapseSpace(card.Text())
	if n, ok := reviewCountFromText(text); ok {
		c.Set(bookgap.FieldReviewCount, n)
	}
	if rating, ok := e.cardRating(card); ok {
		c.Set(bookgap.FieldAverageRating, rating)
	}
	if discount, ok := e.cardDiscount(card, text); ok {
		c.Set(bookgap.FieldDiscount, discount)
	}
	if availability, ok := bookgap.ParseAvailability(text); ok {
		c.Set(bookgap.FieldAvailability, availability)
	}

	return c
}

// cardTitle finds the card's title text, accepting only results of
// plausible title length. No fallback to the card's full text: that is how
// navigation chrome ends up as a title.
func (e *ListingExtractor) cardTitle(card *goquery.Selection) string {
	for _, selector := range cardTitleSelectors {
		found := card.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		text := collapseSpace(found.Text())
		if n := utf8.RuneCountInString(text); n >= minCardTitleLen && n <= maxCardTitleLen {
			return text
		}
	}
	return ""
}

func (e *ListingExtractor) cardPrice(card *goquery.Selection) (float64, bool) {
	for _, selector := range cardPriceSelectors {
		found := card.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		if price, ok := bookgap.ParsePrice(found.Text()); ok {
			return price, true
		}
	}
	// Last resort: the card's own text.
	return bookgap.ParsePrice(card.Text())
}

// cardURL finds the product link: the card itself when it is an anchor,
// else the first child anchor, else link-bearing data attributes. Only
// site-internal hrefs are accepted.
func (e *ListingExtractor) cardURL(card *goquery.Selection) string {
	if goquery.NodeName(card) == "a" {
		if href, ok := card.Attr("href"); ok && acceptableHref(href) {
			return href
		}
	}
	var found string
	card.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if acceptableHref(href) {
			found = href
			return false
		}
		return true
	})
	if found != "" {
		return found
	}
	return firstAttr(card, "data-url", "data-href", "data-link")
}

func acceptableHref(href string) bool {
	return strings.Contains(href, "noon.com") || strings.HasPrefix(href, "/")
}

func (e *ListingExtractor) cardCategory(card *goquery.Selection) string {
	for _, selector := range cardCategorySelectors {
		found := card.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		text := collapseSpace(found.Text())
		if len(text) >= 3 && len(text) <= 100 && !isDigits(text) {
			return text
		}
	}
	return firstAttr(card, "data-category", "data-cat")
}

func (e *ListingExtractor) cardImage(card *goquery.Selection) string {
	img := card.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	return firstAttr(img, "src", "data-src", "data-lazy-src")
}

func (e *ListingExtractor) cardRating(card *goquery.Selection) (float64, bool) {
	var rating float64
	var ok bool
	card.Find(`[class*="star"], [class*="rating"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if r, valid := bookgap.ParseRating(sel.Text()); valid {
			rating, ok = r, true
			return false
		}
		return true
	})
	return rating, ok
}

func (e *ListingExtractor) cardDiscount(card *goquery.Selection, cardText string) (float64, bool) {
	for _, selector := range cardDiscountSelectors {
		found := card.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		if discount, ok := bookgap.ParseDiscount(found.Text()); ok {
			return discount, true
		}
	}
	return bookgap.ParseDiscount(cardText)
}

// firstAttr returns the first present, non-empty attribute value.
func firstAttr(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := sel.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
