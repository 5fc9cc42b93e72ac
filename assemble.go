package bookgap

import "time"

// MergeCandidates combines a JSON-provenance and an HTML-provenance
// candidate for the same document. For each field the JSON value wins when
// present; the HTML value fills the gaps. Either side may be nil.
func MergeCandidates(jsonCand, htmlCand *CandidateRecord) *CandidateRecord {
	merged := NewCandidate(ProvenanceJSON)
	for _, field := range candidateFields {
		if jsonCand != nil {
			if v, ok := jsonCand.Get(field); ok {
				merged.Set(field, v)
				continue
			}
		}
		if htmlCand != nil {
			if v, ok := htmlCand.Get(field); ok {
				merged.Set(field, v)
			}
		}
	}
	return merged
}

// AssembleProduct promotes a merged candidate to a canonical Product. The
// completeness gate requires a non-empty title, a normalized price, and a
// resolvable product URL; candidates failing the gate are silently
// discarded (ok == false). That silent discard is the dominant failure
// mode of the whole engine: a page yielding fewer products than visually
// present is expected, not exceptional.
//
// Relative product URLs are rewritten to absolute URLs rooted at origin.
func AssembleProduct(jsonCand, htmlCand *CandidateRecord, origin string, now time.Time) (*Product, bool) {
	c := MergeCandidates(jsonCand, htmlCand)

	title := c.String(FieldTitle)
	if title == "" {
		return nil, false
	}
	price, ok := c.Float(FieldPrice)
	if !ok {
		return nil, false
	}
	url := NormalizeProductURL(c.String(FieldProductURL), origin)
	if url == "" {
		return nil, false
	}

	p := &Product{
		Title:      title,
		Price:      price,
		Currency:   DefaultCurrency,
		ProductURL: url,
		Category:   c.String(FieldCategory),
		ImageURL:   c.String(FieldImageURL),
		SKU:        c.String(FieldSKU),
		Author:     c.String(FieldAuthor),
		Format:     c.String(FieldFormat),
		ScrapedAt:  now,
	}
	if n, ok := c.Int(FieldReviewCount); ok {
		p.ReviewCount = &n
	}
	if f, ok := c.Float(FieldAverageRating); ok {
		p.AverageRating = &f
	}
	if n, ok := c.Int(FieldBSR); ok {
		p.BSR = &n
		p.BSRCategory = c.String(FieldBSRCategory)
	}
	if v, ok := c.Get(FieldAvailability); ok {
		if a, ok := v.(Availability); ok {
			p.Availability = a
		}
	}
	if f, ok := c.Float(FieldDiscount); ok {
		p.DiscountPercentage = &f
	}
	p.PublicationDate = c.String(FieldPublicationDate)
	p.Language = c.String(FieldLanguage)

	return p, true
}

// DedupeProducts removes products sharing an identity key (the normalized
// product URL). Policy is first-seen-wins: a later product with the same
// URL is dropped outright even if it carries richer data. Field-level
// merging is the enrichment merger's job, not the deduplicator's.
func DedupeProducts(products []*Product) []*Product {
	seen := make(map[string]struct{}, len(products))
	unique := make([]*Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ProductURL]; ok {
			continue
		}
		seen[p.ProductURL] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}
