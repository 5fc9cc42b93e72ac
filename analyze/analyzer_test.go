package analyze_test

import (
	"testing"
	"time"

	"github.com/bookgap/bookgap"
	"github.com/bookgap/bookgap/analyze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Analyzer implements bookgap.Analyzer at compile time.
var _ bookgap.Analyzer = (*analyze.Analyzer)(nil)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func product(title string, price float64) *bookgap.Product {
	return &bookgap.Product{
		Title:      title,
		Price:      price,
		Currency:   bookgap.DefaultCurrency,
		ProductURL: "https://www.noon.com/uae-en/" + title,
		ScrapedAt:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAnalyzer_AnalyzeCategory(t *testing.T) {
	t.Parallel()

	t.Run("skips empty categories with no demand signal", func(t *testing.T) {
		t.Parallel()

		a := analyze.NewAnalyzer()
		analysis := a.AnalyzeCategory("books/children", nil)

		assert.Equal(t, bookgap.RecommendSkip, analysis.Recommendation)
		assert.Equal(t, "no_products", analysis.Status)
		assert.Zero(t, analysis.OpportunityScore)
		assert.Nil(t, analysis.Metrics)
	})

	t.Run("skips categories containing bestseller titles", func(t *testing.T) {
		t.Parallel()

		products := []*bookgap.Product{
			product("Harry Potter and the Philosopher's Stone", 45),
			product("An Ordinary Picture Book", 30),
		}

		a := analyze.NewAnalyzer()
		analysis := a.AnalyzeCategory("books/fantasy", products)

		assert.Equal(t, bookgap.RecommendSkip, analysis.Recommendation)
		assert.Equal(t, "too_competitive_bestsellers", analysis.Status)
		require.NotNil(t, analysis.Metrics)
		assert.Equal(t, 2, analysis.Metrics.TotalProducts)
	})

	t.Run("skips categories with bestseller authors", func(t *testing.T) {
		t.Parallel()

		p := product("An Unremarkable Thriller", 50)
		p.Author = "Stephen King"

		a := analyze.NewAnalyzer()
		analysis := a.AnalyzeCategory("books/thriller", []*bookgap.Product{p})

		assert.Equal(t, bookgap.RecommendSkip, analysis.Recommendation)
		assert.Equal(t, "too_competitive_bestsellers", analysis.Status)
	})

	t.Run("grades large categories as high competition", func(t *testing.T) {
		t.Parallel()

		var products []*bookgap.Product
		for i := 0; i < 35; i++ {
			products = append(products, product("Plain Title", 40))
		}

		a := analyze.NewAnalyzer()
		analysis := a.AnalyzeCategory("books/crowded", products)

		assert.Equal(t, bookgap.LevelHigh, analysis.CompetitionLevel)
		assert.Equal(t, bookgap.LevelHigh, analysis.DemandLevel)
	})

	t.Run("grades review-heavy categories as high competition", func(t *testing.T) {
		t.Parallel()

		var products []*bookgap.Product
		for i := 0; i < 6; i++ {
			p := product("Reviewed Title", 40)
			p.ReviewCount = intPtr(80)
			products = append(products, p)
		}

		a := analyze.NewAnalyzer()
		analysis := a.AnalyzeCategory("books/reviewed", products)

		assert.Equal(t, bookgap.LevelHigh, analysis.CompetitionLevel)
	})

	t.Run("grades sparse unreviewed categories as low competition", func(t *testing.T) {
		t.Parallel()

		products := []*bookgap.Product{
			product("Quiet Title One", 35),
			product("Quiet Title Two", 45),
			product("Quiet Title Three", 25),
		}

		a := analyze.NewAnalyzer()
		analysis := a.AnalyzeCategory("books/quiet", products)

		assert.Equal(t, bookgap.LevelLow, analysis.CompetitionLevel)
		assert.Equal(t, bookgap.LevelMedium, analysis.DemandLevel)
	})

	t.Run("low stock pressure raises demand", func(t *testing.T) {
		t.Parallel()

		var products []*bookgap.Product
		for i := 0; i < 6; i++ {
			p := product("Scarce Title", 40)
			if i < 3 {
				p.Availability = bookgap.AvailabilityLowStock
			}
			products = append(products, p)
		}

		a := analyze.NewAnalyzer()
		analysis := a.AnalyzeCategory("books/scarce", products)

		assert.Equal(t, bookgap.LevelHigh, analysis.DemandLevel)
	})

	t.Run("computes metrics ignoring absent fields", func(t *testing.T) {
		t.Parallel()

		p1 := product("First Title", 20)
		p1.ReviewCount = intPtr(10)
		p1.AverageRating = floatPtr(4.0)
		p1.Author = "Author One"
		p1.DiscountPercentage = floatPtr(60)
		p2 := product("Second Title", 40)
		p2.Author = "Author Two"
		p3 := product("Third Title", 60)
		p3.Author = "Author One"

		a := analyze.NewAnalyzer()
		analysis := a.AnalyzeCategory("books/mixed", []*bookgap.Product{p1, p2, p3})

		m := analysis.Metrics
		require.NotNil(t, m)
		assert.Equal(t, 3, m.TotalProducts)
		assert.Equal(t, 10.0, m.AvgReviews)
		assert.Equal(t, 10, m.MaxReviews)
		assert.Equal(t, 1, m.ProductsWithReviews)
		assert.InDelta(t, 0.33, m.ReviewCoverage, 0.001)
		assert.Equal(t, 4.0, m.AvgRating)
		assert.Equal(t, 40.0, m.AvgPrice)
		assert.Equal(t, 20.0, m.MinPrice)
		assert.Equal(t, 60.0, m.MaxPrice)
		assert.Equal(t, 40.0, m.PriceRange)
		assert.Equal(t, 60.0, m.AvgDiscount)
		assert.InDelta(t, 0.33, m.HighDiscountRate, 0.001)
		assert.Equal(t, 2, m.UniqueAuthors)
		assert.InDelta(t, 0.67, m.AuthorDiversity, 0.001)
	})

	t.Run("scores weight low competition above demand", func(t *testing.T) {
		t.Parallel()

		// Three quiet products: medium demand (0.6), low competition
		// (1.0), viability clamped to 1.0.
		products := []*bookgap.Product{
			product("Niche Title One", 40),
			product("Niche Title Two", 40),
			product("Niche Title Three", 40),
		}

		a := analyze.NewAnalyzer()
		analysis := a.AnalyzeCategory("books/niche", products)

		assert.InDelta(t, 86.0, analysis.OpportunityScore, 0.01)
		assert.Equal(t, bookgap.RecommendHigh, analysis.Recommendation)
		assert.Equal(t, "excellent", analysis.Status)
	})

	t.Run("respects custom thresholds", func(t *testing.T) {
		t.Parallel()

		var products []*bookgap.Product
		for i := 0; i < 8; i++ {
			products = append(products, product("Tuned Title", 40))
		}

		a := analyze.NewAnalyzer(analyze.WithHighCompetitionCount(5))
		analysis := a.AnalyzeCategory("books/tuned", products)

		assert.Equal(t, bookgap.LevelHigh, analysis.CompetitionLevel)
	})
}

func TestAnalyzer_AnalyzeAll(t *testing.T) {
	t.Parallel()

	t.Run("ranks categories by score and drops skips", func(t *testing.T) {
		t.Parallel()

		quiet := []*bookgap.Product{
			product("Quiet Title One", 40),
			product("Quiet Title Two", 40),
			product("Quiet Title Three", 40),
		}
		var crowded []*bookgap.Product
		for i := 0; i < 35; i++ {
			p := product("Crowded Title", 40)
			p.ReviewCount = intPtr(300)
			crowded = append(crowded, p)
		}
		bestseller := []*bookgap.Product{product("Harry Potter Box Set", 150)}

		a := analyze.NewAnalyzer()
		analyses := a.AnalyzeAll(map[string][]*bookgap.Product{
			"books/quiet":      quiet,
			"books/crowded":    crowded,
			"books/bestseller": bestseller,
			"books/empty":      nil,
		})

		// Skips (bestseller, empty) are dropped; remainder ranked by score.
		require.Len(t, analyses, 2)
		assert.Equal(t, "books/quiet", analyses[0].Category)
		assert.Equal(t, "books/crowded", analyses[1].Category)
		assert.Greater(t, analyses[0].OpportunityScore, analyses[1].OpportunityScore)
	})
}
