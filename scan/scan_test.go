package scan_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bookgap/bookgap"
	"github.com/bookgap/bookgap/mock"
	"github.com/bookgap/bookgap/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(subcategories ...string) *scan.Config {
	return &scan.Config{
		MainCategories: []scan.MainCategory{
			{Category: "Children's Books", Subcategories: subcategories},
		},
		SearchStrategy: scan.SearchStrategy{
			MaxProductsPerCategory:   50,
			SkipIfNoResultsThreshold: 2,
		},
	}
}

func listingProducts(category string, n int) []*bookgap.Product {
	products := make([]*bookgap.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, &bookgap.Product{
			Title:      "The Very Hungry Caterpillar Board Book " + string(rune('A'+i)),
			Price:      39.0,
			Currency:   "AED",
			ProductURL: "https://www.noon.com/uae-en/book-" + category + "-" + string(rune('a'+i)) + "/p",
			Category:   category,
		})
	}
	return products
}

func analysisWith(category string, score float64, rec string) *bookgap.CategoryAnalysis {
	return &bookgap.CategoryAnalysis{
		Category:         category,
		OpportunityScore: score,
		Status:           "analyzed",
		Recommendation:   rec,
	}
}

func TestScanner_Scan(t *testing.T) {
	t.Parallel()

	t.Run("ScrapesAndAnalyzesCategories", func(t *testing.T) {
		t.Parallel()

		var fetchedURLs []string
		var mu sync.Mutex

		s := &scan.Scanner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					mu.Lock()
					fetchedURLs = append(fetchedURLs, url)
					mu.Unlock()
					return "<html></html>", nil
				},
			},
			Listings: &mock.ListingExtractor{
				ExtractProductsFn: func(html string) ([]*bookgap.Product, error) {
					return listingProducts("picture-books", 5), nil
				},
			},
			Analyzer: &mock.Analyzer{
				AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
					return analysisWith(category, 42.0, bookgap.RecommendModerate)
				},
			},
			EnrichThreshold: 50.0,
			RetryDelays:     []time.Duration{},
		}

		result, err := s.Scan(context.Background(), testConfig("Picture Books"), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.CategoriesScanned)
		assert.Equal(t, 0, result.CategoriesSkipped)
		assert.Equal(t, 0, result.CategoriesEnriched)
		assert.Len(t, result.Results["Children's Books > Picture Books"], 5)

		require.Len(t, result.Opportunities, 1)
		assert.Equal(t, "Children's Books > Picture Books", result.Opportunities[0].Category)

		require.Len(t, fetchedURLs, 1)
		assert.Equal(t, "https://www.noon.com/uae-en/search?q=books+Picture+Books", fetchedURLs[0])
	})

	t.Run("SkipsSparseCategories", func(t *testing.T) {
		t.Parallel()

		analyzed := false
		s := &scan.Scanner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) { return "<html></html>", nil },
			},
			Listings: &mock.ListingExtractor{
				ExtractProductsFn: func(html string) ([]*bookgap.Product, error) {
					return listingProducts("rare", 2), nil
				},
			},
			Analyzer: &mock.Analyzer{
				AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
					analyzed = true
					return analysisWith(category, 90.0, bookgap.RecommendHigh)
				},
			},
			RetryDelays: []time.Duration{},
		}

		result, err := s.Scan(context.Background(), testConfig("Rare Topic"), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.CategoriesSkipped)
		assert.Equal(t, 0, result.CategoriesScanned)
		assert.Empty(t, result.Opportunities)
		assert.False(t, analyzed, "sparse categories should not be analyzed")
	})

	t.Run("EnrichesAboveThreshold", func(t *testing.T) {
		t.Parallel()

		var detailFetches []string
		var mu sync.Mutex
		var analyses int

		s := &scan.Scanner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if strings.Contains(url, "/search?") {
						return "<html>search</html>", nil
					}
					mu.Lock()
					detailFetches = append(detailFetches, url)
					mu.Unlock()
					return "<html>detail</html>", nil
				},
			},
			Listings: &mock.ListingExtractor{
				ExtractProductsFn: func(html string) ([]*bookgap.Product, error) {
					return listingProducts("crafts", 3), nil
				},
			},
			Details: &mock.DetailExtractor{
				ExtractDetailFn: func(html string) (*bookgap.CandidateRecord, error) {
					cand := bookgap.NewCandidate(bookgap.ProvenanceJSON)
					cand.Set(bookgap.FieldReviewCount, 12)
					return cand, nil
				},
			},
			Analyzer: &mock.Analyzer{
				AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
					mu.Lock()
					analyses++
					mu.Unlock()
					return analysisWith(category, 75.0, bookgap.RecommendHigh)
				},
			},
			EnrichThreshold: 50.0,
			RetryDelays:     []time.Duration{},
			Now:             func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
		}

		result, err := s.Scan(context.Background(), testConfig("Craft Books"), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.CategoriesEnriched)
		assert.Len(t, detailFetches, 3)
		assert.Equal(t, 2, analyses, "enriched categories are analyzed twice")

		products := result.Results["Children's Books > Craft Books"]
		require.Len(t, products, 3)
		for _, p := range products {
			require.NotNil(t, p.ReviewCount)
			assert.Equal(t, 12, *p.ReviewCount)
			assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), p.ScrapedAt)
		}
	})

	t.Run("KeepsBaseProductOnDetailFailure", func(t *testing.T) {
		t.Parallel()

		var detailRan bool
		var mu sync.Mutex

		s := &scan.Scanner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if strings.Contains(url, "/search?") {
						return "<html>search</html>", nil
					}
					return "", bookgap.Errorf(bookgap.EINTERNAL, "proxy returned status 500")
				},
			},
			Listings: &mock.ListingExtractor{
				ExtractProductsFn: func(html string) ([]*bookgap.Product, error) {
					return listingProducts("atlases", 3), nil
				},
			},
			Details: &mock.DetailExtractor{
				ExtractDetailFn: func(html string) (*bookgap.CandidateRecord, error) {
					mu.Lock()
					detailRan = true
					mu.Unlock()
					return nil, nil
				},
			},
			Analyzer: &mock.Analyzer{
				AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
					return analysisWith(category, 80.0, bookgap.RecommendHigh)
				},
			},
			EnrichThreshold: 50.0,
			RetryDelays:     []time.Duration{},
		}

		result, err := s.Scan(context.Background(), testConfig("Atlases"), nil)
		require.NoError(t, err)

		assert.False(t, detailRan, "detail extractor should not run when the fetch fails")
		products := result.Results["Children's Books > Atlases"]
		require.Len(t, products, 3)
		for _, p := range products {
			assert.Nil(t, p.ReviewCount)
		}
	})

	t.Run("SkipsSeenURLsDuringEnrichment", func(t *testing.T) {
		t.Parallel()

		var detailFetches int
		var mu sync.Mutex

		products := listingProducts("poetry", 3)
		products[1].ProductURL = products[0].ProductURL

		s := &scan.Scanner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if strings.Contains(url, "/search?") {
						return "<html>search</html>", nil
					}
					mu.Lock()
					detailFetches++
					mu.Unlock()
					return "<html>detail</html>", nil
				},
			},
			Listings: &mock.ListingExtractor{
				ExtractProductsFn: func(html string) ([]*bookgap.Product, error) {
					return products, nil
				},
			},
			Details: &mock.DetailExtractor{
				ExtractDetailFn: func(html string) (*bookgap.CandidateRecord, error) {
					return bookgap.NewCandidate(bookgap.ProvenanceHTML), nil
				},
			},
			Analyzer: &mock.Analyzer{
				AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
					return analysisWith(category, 80.0, bookgap.RecommendHigh)
				},
			},
			EnrichThreshold: 50.0,
			RetryDelays:     []time.Duration{},
		}

		result, err := s.Scan(context.Background(), testConfig("Poetry"), nil)
		require.NoError(t, err)

		assert.Equal(t, 2, detailFetches, "duplicate URL should be fetched once")
		assert.Len(t, result.Results["Children's Books > Poetry"], 3)
	})

	t.Run("PersistsProductsUnderRun", func(t *testing.T) {
		t.Parallel()

		var created []*bookgap.Product
		var completed *bookgap.Run

		s := &scan.Scanner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) { return "<html></html>", nil },
			},
			Listings: &mock.ListingExtractor{
				ExtractProductsFn: func(html string) ([]*bookgap.Product, error) {
					return listingProducts("space", 4), nil
				},
			},
			Analyzer: &mock.Analyzer{
				AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
					return analysisWith(category, 30.0, bookgap.RecommendLow)
				},
			},
			Runs: &mock.RunService{
				CreateRunFn: func(_ context.Context, run *bookgap.Run) error {
					run.ID = "run-1"
					return nil
				},
				CompleteRunFn: func(_ context.Context, run *bookgap.Run) error {
					completed = run
					return nil
				},
			},
			Products: &mock.ProductService{
				CreateProductFn: func(_ context.Context, p *bookgap.Product) error {
					created = append(created, p)
					return nil
				},
			},
			EnrichThreshold: 50.0,
			RetryDelays:     []time.Duration{},
		}

		result, err := s.Scan(context.Background(), testConfig("Space Books"), nil)
		require.NoError(t, err)

		assert.Equal(t, "run-1", result.RunID)
		assert.Equal(t, 4, result.ProductsSaved)
		require.Len(t, created, 4)
		for _, p := range created {
			assert.Equal(t, "run-1", p.RunID)
		}

		require.NotNil(t, completed)
		assert.Equal(t, 1, completed.Categories)
		assert.Equal(t, 4, completed.Products)
	})

	t.Run("RanksOpportunitiesByScore", func(t *testing.T) {
		t.Parallel()

		scores := map[string]float64{
			"Picture Books": 20.0,
			"Craft Books":   45.0,
			"Poetry":        10.0,
		}

		s := &scan.Scanner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) { return "<html></html>", nil },
			},
			Listings: &mock.ListingExtractor{
				ExtractProductsFn: func(html string) ([]*bookgap.Product, error) {
					return listingProducts("x", 5), nil
				},
			},
			Analyzer: &mock.Analyzer{
				AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
					name := strings.TrimPrefix(category, "Children's Books > ")
					return analysisWith(category, scores[name], bookgap.RecommendLow)
				},
			},
			EnrichThreshold: 50.0,
			RetryDelays:     []time.Duration{},
		}

		result, err := s.Scan(context.Background(), testConfig("Picture Books", "Craft Books", "Poetry"), nil)
		require.NoError(t, err)

		require.Len(t, result.Opportunities, 3)
		assert.Equal(t, 45.0, result.Opportunities[0].OpportunityScore)
		assert.Equal(t, 20.0, result.Opportunities[1].OpportunityScore)
		assert.Equal(t, 10.0, result.Opportunities[2].OpportunityScore)
	})

	t.Run("ReportsFailuresAndContinues", func(t *testing.T) {
		t.Parallel()

		var events []scan.ProgressEvent
		var mu sync.Mutex

		s := &scan.Scanner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					if strings.Contains(url, "Broken") {
						return "", bookgap.Errorf(bookgap.EINTERNAL, "proxy returned status 500")
					}
					return "<html></html>", nil
				},
			},
			Listings: &mock.ListingExtractor{
				ExtractProductsFn: func(html string) ([]*bookgap.Product, error) {
					return listingProducts("ok", 5), nil
				},
			},
			Analyzer: &mock.Analyzer{
				AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
					return analysisWith(category, 30.0, bookgap.RecommendLow)
				},
			},
			EnrichThreshold: 50.0,
			RetryDelays:     []time.Duration{},
		}

		progress := func(event scan.ProgressEvent) {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
		}

		result, err := s.Scan(context.Background(), testConfig("Picture Books", "Broken Category"), progress)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 1, result.CategoriesScanned)

		var failed int
		for _, e := range events {
			if e.Type == scan.ProgressCategoryFailed {
				failed++
				assert.Error(t, e.Error)
			}
		}
		assert.Equal(t, 1, failed)
	})

	t.Run("NegativeThresholdDisablesEnrichment", func(t *testing.T) {
		t.Parallel()

		var detailRan bool
		var mu sync.Mutex

		s := &scan.Scanner{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) { return "<html></html>", nil },
			},
			Listings: &mock.ListingExtractor{
				ExtractProductsFn: func(html string) ([]*bookgap.Product, error) {
					return listingProducts("y", 5), nil
				},
			},
			Details: &mock.DetailExtractor{
				ExtractDetailFn: func(html string) (*bookgap.CandidateRecord, error) {
					mu.Lock()
					detailRan = true
					mu.Unlock()
					return nil, nil
				},
			},
			Analyzer: &mock.Analyzer{
				AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
					return analysisWith(category, 99.0, bookgap.RecommendHigh)
				},
			},
			EnrichThreshold: -1,
			RetryDelays:     []time.Duration{},
		}

		result, err := s.Scan(context.Background(), testConfig("Picture Books"), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.CategoriesEnriched)
		assert.False(t, detailRan)
	})
}

func TestScanner_Retries(t *testing.T) {
	t.Parallel()

	var attempts int
	var mu sync.Mutex

	s := &scan.Scanner{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				mu.Lock()
				defer mu.Unlock()
				attempts++
				if attempts < 3 {
					return "", bookgap.Errorf(bookgap.EINTERNAL, "proxy returned status 500")
				}
				return "<html></html>", nil
			},
		},
		Listings: &mock.ListingExtractor{
			ExtractProductsFn: func(html string) ([]*bookgap.Product, error) {
				return listingProducts("retry", 5), nil
			},
		},
		Analyzer: &mock.Analyzer{
			AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
				return analysisWith(category, 30.0, bookgap.RecommendLow)
			},
		},
		EnrichThreshold: 50.0,
		RetryDelays:     []time.Duration{time.Millisecond, time.Millisecond},
	}

	result, err := s.Scan(context.Background(), testConfig("Flaky Category"), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, result.CategoriesScanned)
	assert.Equal(t, 0, result.Failed)
}

func TestSearchURL(t *testing.T) {
	t.Parallel()

	got := scan.SearchURL("https://www.noon.com", "Picture Books")
	assert.Equal(t, "https://www.noon.com/uae-en/search?q=books+Picture+Books", got)
}
