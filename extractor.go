package bookgap

// ListingExtractor converts a raw listing/search-results document into
// canonical products. Extraction is best-effort and side-effect free: a
// sparse or atypical page legitimately yields fewer products than visually
// present, or none at all, without error.
//
// Implementations must be safe to invoke concurrently across independent
// documents; each call owns its own parsed tree.
type ListingExtractor interface {
	// ExtractProducts parses HTML, mines embedded JSON payloads and
	// product-card markup, assembles candidates through the completeness
	// gate, and returns deduplicated products.
	// Returns EINVALID only when the document itself cannot be parsed.
	ExtractProducts(html string) ([]*Product, error)
}

// DetailExtractor converts a raw product-detail document into a single
// candidate record suitable for enriching an already-assembled product.
type DetailExtractor interface {
	// ExtractDetail parses HTML and returns one candidate with each field
	// independently present or absent. Embedded JSON values take priority
	// over markup-derived ones.
	ExtractDetail(html string) (*CandidateRecord, error)
}
