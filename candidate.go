package bookgap

// Provenance tags which extraction source produced a candidate's values.
type Provenance string

// Candidate provenance values.
const (
	ProvenanceJSON Provenance = "json"
	ProvenanceHTML Provenance = "html"
)

// Canonical field names used on candidate records. These are the spine
// shared by the JSON miner, the HTML extractor, the assembler, and the
// enrichment merger.
const (
	FieldTitle           = "title"
	FieldPrice           = "price"
	FieldProductURL      = "product_url"
	FieldCategory        = "category"
	FieldImageURL        = "image_url"
	FieldSKU             = "sku"
	FieldReviewCount     = "review_count"
	FieldAverageRating   = "average_rating"
	FieldBSR             = "bsr"
	FieldBSRCategory     = "bsr_category"
	FieldAvailability    = "availability"
	FieldDiscount        = "discount_percentage"
	FieldAuthor          = "author"
	FieldFormat          = "format"
	FieldPublicationDate = "publication_date"
	FieldLanguage        = "language"
)

// CandidateFields returns every field a candidate may carry, in merge
// order. Callers must not modify the returned slice.
func CandidateFields() []string {
	return candidateFields
}

// candidateFields lists every field a candidate may carry, in merge order.
var candidateFields = []string{
	FieldTitle,
	FieldPrice,
	FieldProductURL,
	FieldCategory,
	FieldImageURL,
	FieldSKU,
	FieldReviewCount,
	FieldAverageRating,
	FieldBSR,
	FieldBSRCategory,
	FieldAvailability,
	FieldDiscount,
	FieldAuthor,
	FieldFormat,
	FieldPublicationDate,
	FieldLanguage,
}

// CandidateRecord is a provenance-tagged, partially-filled field set
// produced by one extraction source. Values are already normalized: strings
// for text fields, float64 for price/rating/discount, int for counts and
// rank, Availability for stock status.
//
// Candidates are transient. They exist between extraction and assembly (or
// enrichment) and are never persisted or returned to callers.
type CandidateRecord struct {
	Provenance Provenance
	fields     map[string]any
}

// NewCandidate creates an empty candidate with the given provenance.
func NewCandidate(p Provenance) *CandidateRecord {
	return &CandidateRecord{
		Provenance: p,
		fields:     make(map[string]any),
	}
}

// Set records a normalized value for a field. Nil values and empty strings
// are ignored; absence is represented by the field simply not being set.
func (c *CandidateRecord) Set(field string, value any) {
	if value == nil {
		return
	}
	if s, ok := value.(string); ok && s == "" {
		return
	}
	c.fields[field] = value
}

// Get returns the value for a field and whether it is present.
func (c *CandidateRecord) Get(field string) (any, bool) {
	v, ok := c.fields[field]
	return v, ok
}

// Has reports whether a field is present.
func (c *CandidateRecord) Has(field string) bool {
	_, ok := c.fields[field]
	return ok
}

// Len returns the number of fields present.
func (c *CandidateRecord) Len() int {
	return len(c.fields)
}

// String returns the value for a field as a string, or "" if absent or not
// a string.
func (c *CandidateRecord) String(field string) string {
	if v, ok := c.fields[field]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Float returns the value for a field as a float64.
func (c *CandidateRecord) Float(field string) (float64, bool) {
	if v, ok := c.fields[field]; ok {
		if f, ok := v.(float64); ok {
			return f, true
		}
	}
	return 0, false
}

// Int returns the value for a field as an int.
func (c *CandidateRecord) Int(field string) (int, bool) {
	if v, ok := c.fields[field]; ok {
		if n, ok := v.(int); ok {
			return n, true
		}
	}
	return 0, false
}
