package bookgap

import (
	"strings"
	"time"
	"unicode/utf8"
)

// categoryLabelTitles are known category/label terms that detail pages
// sometimes surface where a product title should be. An incoming title
// equal to one of these is breadcrumb text, not a title.
var categoryLabelTitles = map[string]struct{}{
	"pre-school":     {},
	"early learning": {},
	"books":          {},
	"fiction":        {},
	"non-fiction":    {},
}

// minEnrichTitleLen is the minimum length, in characters, for a
// detail-page title to replace the baseline title.
const minEnrichTitleLen = 15

// acceptableEnrichTitle reports whether an incoming detail-page title may
// overwrite the baseline. Short titles, known category labels, and short
// ampersand-bearing strings ("Fiction & Literature"-style breadcrumb text)
// are rejected.
func acceptableEnrichTitle(title string) bool {
	if utf8.RuneCountInString(title) < minEnrichTitleLen {
		return false
	}
	if _, ok := categoryLabelTitles[strings.ToLower(title)]; ok {
		return false
	}
	if strings.Contains(title, "&") && utf8.RuneCountInString(title) < 30 {
		return false
	}
	return true
}

// EnrichProduct combines a baseline product with a detail-page candidate.
// A field is overwritten only when the incoming value is present; the
// title additionally passes acceptableEnrichTitle. The baseline is never
// mutated: the result is a new snapshot with ScrapedAt set to now.
func EnrichProduct(base *Product, detail *CandidateRecord, now time.Time) *Product {
	p := base.Clone()
	p.ScrapedAt = now
	if detail == nil {
		return p
	}

	if title := detail.String(FieldTitle); title != "" && acceptableEnrichTitle(title) {
		p.Title = title
	}
	if price, ok := detail.Float(FieldPrice); ok {
		p.Price = price
	}
	if url := detail.String(FieldProductURL); url != "" {
		p.ProductURL = NormalizeProductURL(url, DefaultOrigin)
	}
	if v := detail.String(FieldCategory); v != "" {
		p.Category = v
	}
	if v := detail.String(FieldImageURL); v != "" {
		p.ImageURL = v
	}
	if v := detail.String(FieldSKU); v != "" {
		p.SKU = v
	}
	if n, ok := detail.Int(FieldReviewCount); ok {
		p.ReviewCount = &n
	}
	if f, ok := detail.Float(FieldAverageRating); ok {
		p.AverageRating = &f
	}
	if n, ok := detail.Int(FieldBSR); ok {
		p.BSR = &n
	}
	if v := detail.String(FieldBSRCategory); v != "" {
		p.BSRCategory = v
	}
	if v, ok := detail.Get(FieldAvailability); ok {
		if a, ok := v.(Availability); ok {
			p.Availability = a
		}
	}
	if f, ok := detail.Float(FieldDiscount); ok {
		p.DiscountPercentage = &f
	}
	if v := detail.String(FieldAuthor); v != "" {
		p.Author = v
	}
	if v := detail.String(FieldFormat); v != "" {
		p.Format = v
	}
	if v := detail.String(FieldPublicationDate); v != "" {
		p.PublicationDate = v
	}
	if v := detail.String(FieldLanguage); v != "" {
		p.Language = v
	}

	return p
}
