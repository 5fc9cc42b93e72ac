// Package scan orchestrates market scans. It coordinates category search,
// listing extraction, opportunity analysis, selective detail enrichment,
// and persistence of the resulting products.
package scan

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/bookgap/bookgap"
	"github.com/bookgap/bookgap/bloom"
	"golang.org/x/sync/errgroup"
)

// DefaultEnrichThreshold is the opportunity score a category must reach
// before its products are enriched with detail-page data. Detail fetches
// are expensive, so only promising categories get them.
const DefaultEnrichThreshold = 50.0

// DefaultConcurrency is how many categories are scraped at once.
const DefaultConcurrency = 4

// SeenSet records product URLs whose detail pages were already fetched.
// bloom.SeenSet satisfies this.
type SeenSet interface {
	MarkSeen(url string) bool
}

// Scanner orchestrates scanning of the category tree.
type Scanner struct {
	Fetcher  bookgap.Fetcher
	Listings bookgap.ListingExtractor
	Details  bookgap.DetailExtractor
	Analyzer bookgap.Analyzer

	// Optional persistence. When set, every scanned product is stored
	// under a run.
	Runs     bookgap.RunService
	Products bookgap.ProductService

	// Optional politeness controls.
	RateLimiter bookgap.DomainLimiter
	Seen        SeenSet

	// Origin is the storefront root. Defaults to bookgap.DefaultOrigin.
	Origin string

	// Concurrency is how many categories are processed at once.
	Concurrency int

	// EnrichThreshold gates detail enrichment. Zero means
	// DefaultEnrichThreshold; negative disables enrichment.
	EnrichThreshold float64

	RetryDelays []time.Duration

	// Now is the clock used to stamp enriched products. Defaults to
	// time.Now.
	Now func() time.Time
}

// Result holds the outcome of a scan.
type Result struct {
	RunID         string
	Opportunities []*bookgap.CategoryAnalysis
	Results       map[string][]*bookgap.Product

	CategoriesScanned  int
	CategoriesSkipped  int
	CategoriesEnriched int
	ProductsSaved      int
	Failed             int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCategoryCompleted
	ProgressCategorySkipped
	ProgressCategoryFailed
	ProgressFinished
)

// ProgressEvent reports progress during a scan.
type ProgressEvent struct {
	Type      ProgressType
	Category  string
	Completed int
	Total     int
	Products  int
	Score     float64
	Error     error
}

// ProgressFunc is a callback for reporting scan progress.
type ProgressFunc func(event ProgressEvent)

// categoryResult is the outcome of one fully processed subcategory.
type categoryResult struct {
	sub      Subcategory
	products []*bookgap.Product
	analysis *bookgap.CategoryAnalysis
	enriched bool
	skipped  bool
	err      error
}

// SearchURL builds the storefront search URL used to discover a
// category's products.
func SearchURL(origin, category string) string {
	return origin + "/uae-en/search?q=" + url.QueryEscape("books "+category)
}

// Scan processes every subcategory in the config and returns the ranked
// opportunities. The progress callback, if provided, receives events as
// categories complete.
func (s *Scanner) Scan(ctx context.Context, cfg *Config, progress ProgressFunc) (*Result, error) {
	subs := cfg.Subcategories()
	maxProducts := cfg.MaxProducts()
	skipThreshold := cfg.SearchStrategy.SkipIfNoResultsThreshold

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	enrichThreshold := s.EnrichThreshold
	if enrichThreshold == 0 {
		enrichThreshold = DefaultEnrichThreshold
	}

	seen := s.Seen
	if seen == nil {
		seen = bloom.NewSeenSet(100_000, 0.01)
	}
	// The Bloom filter is not safe for concurrent writers.
	var seenMu sync.Mutex
	markSeen := func(u string) bool {
		seenMu.Lock()
		defer seenMu.Unlock()
		return seen.MarkSeen(u)
	}

	result := &Result{Results: make(map[string][]*bookgap.Product)}

	var run *bookgap.Run
	if s.Runs != nil {
		run = &bookgap.Run{StartedAt: s.now()}
		if err := s.Runs.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("creating run: %w", err)
		}
		result.RunID = run.ID
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: len(subs)})
	}

	resultCh := make(chan categoryResult, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, sub := range subs {
			sub := sub
			g.Go(func() error {
				resultCh <- s.processCategory(gctx, sub, maxProducts, skipThreshold, enrichThreshold, markSeen)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	var completed int
	for cr := range resultCh {
		completed++

		switch {
		case cr.err != nil:
			result.Failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressCategoryFailed,
					Category:  cr.sub.FullPath,
					Completed: completed,
					Total:     len(subs),
					Error:     cr.err,
				})
			}

		case cr.skipped:
			result.CategoriesSkipped++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressCategorySkipped,
					Category:  cr.sub.FullPath,
					Completed: completed,
					Total:     len(subs),
					Products:  len(cr.products),
				})
			}

		default:
			result.CategoriesScanned++
			if cr.enriched {
				result.CategoriesEnriched++
			}
			result.Results[cr.sub.FullPath] = cr.products
			if cr.analysis != nil && cr.analysis.Recommendation != bookgap.RecommendSkip {
				result.Opportunities = append(result.Opportunities, cr.analysis)
			}

			if s.Products != nil && run != nil {
				for _, p := range cr.products {
					p.RunID = run.ID
					if err := s.Products.CreateProduct(ctx, p); err != nil {
						result.Failed++
						continue
					}
					result.ProductsSaved++
				}
			}

			if progress != nil {
				var score float64
				if cr.analysis != nil {
					score = cr.analysis.OpportunityScore
				}
				progress(ProgressEvent{
					Type:      ProgressCategoryCompleted,
					Category:  cr.sub.FullPath,
					Completed: completed,
					Total:     len(subs),
					Products:  len(cr.products),
					Score:     score,
				})
			}
		}
	}

	sort.SliceStable(result.Opportunities, func(i, j int) bool {
		return result.Opportunities[i].OpportunityScore > result.Opportunities[j].OpportunityScore
	})

	if run != nil {
		run.Categories = result.CategoriesScanned
		run.Products = result.ProductsSaved
		run.Enriched = result.CategoriesEnriched
		if err := s.Runs.CompleteRun(ctx, run); err != nil {
			return nil, fmt.Errorf("completing run: %w", err)
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: len(subs), Total: len(subs)})
	}

	return result, nil
}

// processCategory scrapes one subcategory, analyzes it, and enriches its
// products when the quick analysis clears the threshold.
func (s *Scanner) processCategory(ctx context.Context, sub Subcategory, maxProducts, skipThreshold int, enrichThreshold float64, markSeen func(string) bool) categoryResult {
	cr := categoryResult{sub: sub}

	products, err := s.scrapeCategory(ctx, sub.Name, maxProducts)
	if err != nil {
		cr.err = err
		return cr
	}

	if len(products) <= skipThreshold {
		cr.products = products
		cr.skipped = true
		return cr
	}

	// Quick analysis with listing-level data decides whether the
	// category earns detail fetches.
	analysis := s.Analyzer.AnalyzeCategory(sub.FullPath, products)

	if s.Details != nil && enrichThreshold >= 0 && analysis.OpportunityScore >= enrichThreshold {
		enriched := s.enrichProducts(ctx, products, markSeen)
		analysis = s.Analyzer.AnalyzeCategory(sub.FullPath, enriched)
		products = enriched
		cr.enriched = true
	}

	cr.products = products
	cr.analysis = analysis
	return cr
}

// scrapeCategory fetches and extracts one category's search results.
func (s *Scanner) scrapeCategory(ctx context.Context, category string, maxProducts int) ([]*bookgap.Product, error) {
	searchURL := SearchURL(s.origin(), category)

	if err := s.wait(ctx, searchURL); err != nil {
		return nil, err
	}

	html, err := fetchWithRetry(ctx, searchURL, s.Fetcher.Fetch, s.retryDelays())
	if err != nil {
		return nil, fmt.Errorf("fetching search results for %q: %w", category, err)
	}

	products, err := s.Listings.ExtractProducts(html)
	if err != nil {
		return nil, fmt.Errorf("extracting products for %q: %w", category, err)
	}

	if maxProducts > 0 && len(products) > maxProducts {
		products = products[:maxProducts]
	}

	for _, p := range products {
		if p.Category == "" {
			p.Category = category
		}
	}

	return products, nil
}

// enrichProducts fetches detail pages and merges their data into the
// products. A product whose detail page cannot be fetched or parsed is
// kept as-is; a URL already marked seen is not fetched again.
func (s *Scanner) enrichProducts(ctx context.Context, products []*bookgap.Product, markSeen func(string) bool) []*bookgap.Product {
	enriched := make([]*bookgap.Product, 0, len(products))

	for _, p := range products {
		if markSeen(p.ProductURL) {
			enriched = append(enriched, p)
			continue
		}

		if err := s.wait(ctx, p.ProductURL); err != nil {
			enriched = append(enriched, p)
			continue
		}

		html, err := fetchWithRetry(ctx, p.ProductURL, s.Fetcher.Fetch, s.retryDelays())
		if err != nil {
			enriched = append(enriched, p)
			continue
		}

		detail, err := s.Details.ExtractDetail(html)
		if err != nil {
			enriched = append(enriched, p)
			continue
		}

		enriched = append(enriched, bookgap.EnrichProduct(p, detail, s.now()))
	}

	return enriched
}

// wait applies the per-domain rate limit for a URL, if configured.
func (s *Scanner) wait(ctx context.Context, rawURL string) error {
	if s.RateLimiter == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return s.RateLimiter.Wait(ctx, u.Host)
}

func (s *Scanner) origin() string {
	if s.Origin != "" {
		return s.Origin
	}
	return bookgap.DefaultOrigin
}

func (s *Scanner) retryDelays() []time.Duration {
	if s.RetryDelays != nil {
		return s.RetryDelays
	}
	return DefaultRetryDelays()
}

func (s *Scanner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
