// Package analyze scores scraped categories for publishing opportunity.
// The analyzer is pure: it consumes assembled products and emits ranked
// assessments, leaving fetching and persistence to its callers.
package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bookgap/bookgap"
)

// Ensure Analyzer implements bookgap.Analyzer at compile time.
var _ bookgap.Analyzer = (*Analyzer)(nil)

// Default thresholds, calibrated to noon.com's review scale rather than
// larger marketplaces.
const (
	DefaultMaxAvgReviews       = 50
	DefaultMaxAvgPrice         = 200.0
	DefaultMinProductsDemand   = 3
	DefaultHighCompetitionSize = 30
)

// defaultBestsellerKeywords mark titles and authors whose presence makes
// a category too competitive to enter.
var defaultBestsellerKeywords = []string{
	"game of thrones", "harry potter", "lord of the rings",
	"stephen king", "j.k. rowling", "george r.r. martin",
	"tolkien", "grisham", "brown", "dan brown",
	"bestseller", "bestselling", "award winning",
	"nobel prize", "pulitzer",
}

// Opportunity component weights. Low competition carries the most weight.
const (
	demandWeight      = 0.35
	competitionWeight = 0.45
	viabilityWeight   = 0.20
)

// Analyzer scores categories using fixed market thresholds.
type Analyzer struct {
	bestsellerKeywords  []string
	maxAvgReviews       float64
	maxAvgPrice         float64
	minProductsDemand   int
	highCompetitionSize int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBestsellerKeywords replaces the default bestseller keyword list.
func WithBestsellerKeywords(keywords []string) Option {
	return func(a *Analyzer) { a.bestsellerKeywords = keywords }
}

// WithMaxAvgReviews sets the average review count above which a category
// counts as highly competitive.
func WithMaxAvgReviews(n float64) Option {
	return func(a *Analyzer) { a.maxAvgReviews = n }
}

// WithMaxAvgPrice sets the average price above which a market counts as
// too premium to enter.
func WithMaxAvgPrice(p float64) Option {
	return func(a *Analyzer) { a.maxAvgPrice = p }
}

// WithMinProductsForDemand sets the product count below which a category
// shows no demand signal.
func WithMinProductsForDemand(n int) Option {
	return func(a *Analyzer) { a.minProductsDemand = n }
}

// WithHighCompetitionCount sets the product count above which a category
// counts as highly competitive.
func WithHighCompetitionCount(n int) Option {
	return func(a *Analyzer) { a.highCompetitionSize = n }
}

// NewAnalyzer creates an Analyzer with default thresholds.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		bestsellerKeywords:  defaultBestsellerKeywords,
		maxAvgReviews:       DefaultMaxAvgReviews,
		maxAvgPrice:         DefaultMaxAvgPrice,
		minProductsDemand:   DefaultMinProductsDemand,
		highCompetitionSize: DefaultHighCompetitionSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeCategory scores a single category from its products.
func (a *Analyzer) AnalyzeCategory(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
	if len(products) == 0 {
		return &bookgap.CategoryAnalysis{
			Category:       category,
			Status:         "no_products",
			Recommendation: bookgap.RecommendSkip,
			Reason:         "No products found - no demand signal",
		}
	}

	metrics := calculateMetrics(products)

	if a.hasBestsellers(products) {
		return &bookgap.CategoryAnalysis{
			Category:       category,
			Status:         "too_competitive_bestsellers",
			Recommendation: bookgap.RecommendSkip,
			Reason:         "Contains bestsellers - too competitive to enter",
			Metrics:        metrics,
		}
	}

	competition := a.assessCompetition(metrics, len(products))
	demand := a.assessDemand(metrics, len(products))
	viability := a.assessViability(metrics)
	score := opportunityScore(demand, competition, viability)
	action, status, reason := recommend(score, demand, competition)

	return &bookgap.CategoryAnalysis{
		Category:         category,
		OpportunityScore: score,
		Status:           status,
		Recommendation:   action,
		Reason:           reason,
		DemandLevel:      demand,
		CompetitionLevel: competition,
		KDPViability:     round2(viability * 100),
		ProductCount:     len(products),
		Metrics:          metrics,
	}
}

// AnalyzeAll scores every category and returns the non-skip analyses
// ranked by opportunity score, highest first.
func (a *Analyzer) AnalyzeAll(results map[string][]*bookgap.Product) []*bookgap.CategoryAnalysis {
	analyses := make([]*bookgap.CategoryAnalysis, 0, len(results))
	for category, products := range results {
		analyses = append(analyses, a.AnalyzeCategory(category, products))
	}

	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].OpportunityScore > analyses[j].OpportunityScore
	})

	opportunities := analyses[:0:0]
	for _, analysis := range analyses {
		if analysis.Recommendation != bookgap.RecommendSkip {
			opportunities = append(opportunities, analysis)
		}
	}
	return opportunities
}

// hasBestsellers reports whether any product's title or author carries a
// bestseller keyword.
func (a *Analyzer) hasBestsellers(products []*bookgap.Product) bool {
	for _, p := range products {
		title := strings.ToLower(p.Title)
		author := strings.ToLower(p.Author)
		for _, kw := range a.bestsellerKeywords {
			if strings.Contains(title, kw) {
				return true
			}
			if author != "" && strings.Contains(author, kw) {
				return true
			}
		}
	}
	return false
}

// calculateMetrics aggregates category signals, skipping absent fields.
func calculateMetrics(products []*bookgap.Product) *bookgap.CategoryMetrics {
	m := &bookgap.CategoryMetrics{TotalProducts: len(products)}

	var reviewSum, ratingSum, priceSum, discountSum float64
	var reviewN, ratingN, priceN, discountN, highDiscountN int
	authors := make(map[string]struct{})

	for _, p := range products {
		if p.ReviewCount != nil {
			reviewN++
			reviewSum += float64(*p.ReviewCount)
			if *p.ReviewCount > m.MaxReviews {
				m.MaxReviews = *p.ReviewCount
			}
		}
		if p.AverageRating != nil {
			ratingN++
			ratingSum += *p.AverageRating
			if *p.AverageRating > m.MaxRating {
				m.MaxRating = *p.AverageRating
			}
		}
		if p.Price > 0 {
			if priceN == 0 || p.Price < m.MinPrice {
				m.MinPrice = p.Price
			}
			if p.Price > m.MaxPrice {
				m.MaxPrice = p.Price
			}
			priceN++
			priceSum += p.Price
		}
		if p.DiscountPercentage != nil {
			discountN++
			discountSum += *p.DiscountPercentage
			if *p.DiscountPercentage > m.MaxDiscount {
				m.MaxDiscount = *p.DiscountPercentage
			}
			if *p.DiscountPercentage > 50 {
				highDiscountN++
			}
		}
		if p.Author != "" {
			authors[p.Author] = struct{}{}
		}
		switch p.Availability {
		case bookgap.AvailabilityInStock:
			m.InStock++
		case bookgap.AvailabilityLowStock:
			m.LowStock++
		case bookgap.AvailabilityOutOfStock:
			m.OutOfStock++
		}
	}

	total := float64(m.TotalProducts)
	if reviewN > 0 {
		m.AvgReviews = round2(reviewSum / float64(reviewN))
	}
	m.ProductsWithReviews = reviewN
	m.ReviewCoverage = round2(float64(reviewN) / total)
	if ratingN > 0 {
		m.AvgRating = round2(ratingSum / float64(ratingN))
	}
	if priceN > 0 {
		m.AvgPrice = round2(priceSum / float64(priceN))
		m.PriceRange = round2(m.MaxPrice - m.MinPrice)
	}
	if discountN > 0 {
		m.AvgDiscount = round2(discountSum / float64(discountN))
	}
	m.HighDiscountRate = round2(float64(highDiscountN) / total)
	m.UniqueAuthors = len(authors)
	m.AuthorDiversity = round2(float64(len(authors)) / total)

	return m
}

// assessCompetition grades competition. High-signal checks run first and
// short-circuit.
func (a *Analyzer) assessCompetition(m *bookgap.CategoryMetrics, productCount int) bookgap.Level {
	switch {
	case productCount > a.highCompetitionSize:
		return bookgap.LevelHigh
	case m.AvgReviews > a.maxAvgReviews:
		return bookgap.LevelHigh
	case m.MaxReviews > 200:
		return bookgap.LevelHigh
	case m.AvgRating > 4.5 && m.AvgReviews > 20:
		return bookgap.LevelHigh
	case m.HighDiscountRate > 0.5:
		return bookgap.LevelHigh
	case m.AvgPrice < 10 && productCount > 10:
		return bookgap.LevelHigh
	case m.AvgReviews < 5 && m.MaxReviews < 20:
		return bookgap.LevelLow
	case productCount < 5:
		return bookgap.LevelLow
	}
	return bookgap.LevelMedium
}

// assessDemand grades demand from product count and stock pressure.
func (a *Analyzer) assessDemand(m *bookgap.CategoryMetrics, productCount int) bookgap.Level {
	if productCount >= 20 {
		return bookgap.LevelHigh
	}
	if productCount >= a.minProductsDemand {
		lowStockRatio := float64(m.LowStock) / float64(productCount)
		if lowStockRatio > 0.3 {
			return bookgap.LevelHigh
		}
		return bookgap.LevelMedium
	}
	return bookgap.LevelLow
}

// assessViability scores how enterable the market is on a 0-1 scale.
func (a *Analyzer) assessViability(m *bookgap.CategoryMetrics) float64 {
	score := 1.0

	switch {
	case m.AvgPrice > a.maxAvgPrice:
		score -= 0.4
	case m.AvgPrice > 150:
		score -= 0.2
	case m.AvgPrice > 100:
		score -= 0.1
	}
	if m.AvgPrice >= 15 && m.AvgPrice <= 80 {
		score += 0.15
	}

	score += m.AuthorDiversity * 0.2

	switch {
	case m.HighDiscountRate > 0.6:
		score -= 0.2
	case m.HighDiscountRate > 0.4:
		score -= 0.1
	}
	if m.HighDiscountRate >= 0.1 && m.HighDiscountRate <= 0.3 {
		score += 0.1
	}

	if m.ReviewCoverage < 0.3 {
		score += 0.1
	}

	if m.AvgPrice < 5 {
		score -= 0.15
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

var demandScores = map[bookgap.Level]float64{
	bookgap.LevelLow:    0.2,
	bookgap.LevelMedium: 0.6,
	bookgap.LevelHigh:   1.0,
}

// competitionScores are inverted: low competition scores high.
var competitionScores = map[bookgap.Level]float64{
	bookgap.LevelLow:    1.0,
	bookgap.LevelMedium: 0.6,
	bookgap.LevelHigh:   0.2,
}

// opportunityScore combines the three assessments into a 0-100 score.
func opportunityScore(demand, competition bookgap.Level, viability float64) float64 {
	return round2((demandScores[demand]*demandWeight +
		competitionScores[competition]*competitionWeight +
		viability*viabilityWeight) * 100)
}

// Recommendation score tiers.
const (
	highScoreFloor     = 70
	moderateScoreFloor = 50
	lowScoreFloor      = 30
)

func recommend(score float64, demand, competition bookgap.Level) (action, status, reason string) {
	switch {
	case score >= highScoreFloor:
		return bookgap.RecommendHigh, "excellent",
			fmt.Sprintf("Excellent opportunity! %s demand, %s competition, friendly market to enter", demand, competition)
	case score >= moderateScoreFloor:
		return bookgap.RecommendModerate, "good",
			fmt.Sprintf("Good opportunity - %s demand, %s competition. Worth exploring.", demand, competition)
	case score >= lowScoreFloor:
		return bookgap.RecommendLow, "fair",
			fmt.Sprintf("Fair opportunity - %s demand, %s competition. Consider carefully.", demand, competition)
	default:
		return bookgap.RecommendSkip, "poor",
			fmt.Sprintf("Not viable - %s demand, %s competition. Too competitive or no demand.", demand, competition)
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
