package bookgap

// Level grades demand and competition assessments.
type Level string

// Assessment levels.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Recommendation actions for a category.
const (
	RecommendHigh     = "high_opportunity"
	RecommendModerate = "moderate_opportunity"
	RecommendLow      = "low_opportunity"
	RecommendSkip     = "skip"
)

// CategoryMetrics are the aggregate signals computed from a category's
// products. All averages ignore absent fields.
type CategoryMetrics struct {
	TotalProducts       int     `json:"totalProducts"`
	AvgReviews          float64 `json:"avgReviews"`
	MaxReviews          int     `json:"maxReviews"`
	ProductsWithReviews int     `json:"productsWithReviews"`
	ReviewCoverage      float64 `json:"reviewCoverage"`
	AvgRating           float64 `json:"avgRating"`
	MaxRating           float64 `json:"maxRating"`
	AvgPrice            float64 `json:"avgPrice"`
	MinPrice            float64 `json:"minPrice"`
	MaxPrice            float64 `json:"maxPrice"`
	PriceRange          float64 `json:"priceRange"`
	AvgDiscount         float64 `json:"avgDiscount"`
	MaxDiscount         float64 `json:"maxDiscount"`
	HighDiscountRate    float64 `json:"highDiscountRate"`
	UniqueAuthors       int     `json:"uniqueAuthors"`
	AuthorDiversity     float64 `json:"authorDiversity"`
	InStock             int     `json:"inStock"`
	LowStock            int     `json:"lowStock"`
	OutOfStock          int     `json:"outOfStock"`
}

// CategoryAnalysis is the scored assessment of one category.
type CategoryAnalysis struct {
	Category         string           `json:"category"`
	OpportunityScore float64          `json:"opportunityScore"`
	Status           string           `json:"status"`
	Recommendation   string           `json:"recommendation"`
	Reason           string           `json:"reason"`
	DemandLevel      Level            `json:"demandLevel,omitempty"`
	CompetitionLevel Level            `json:"competitionLevel,omitempty"`
	KDPViability     float64          `json:"kdpViability"`
	ProductCount     int              `json:"productCount"`
	Metrics          *CategoryMetrics `json:"metrics,omitempty"`
}

// Analyzer scores categories for publishing opportunity. It consumes
// assembled products only; it never touches raw documents.
type Analyzer interface {
	// AnalyzeCategory scores a single category.
	AnalyzeCategory(category string, products []*Product) *CategoryAnalysis

	// AnalyzeAll scores every category and returns non-skip analyses
	// ranked by opportunity score, highest first.
	AnalyzeAll(results map[string][]*Product) []*CategoryAnalysis
}
