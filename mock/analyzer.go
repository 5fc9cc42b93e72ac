package mock

import "github.com/bookgap/bookgap"

var _ bookgap.Analyzer = (*Analyzer)(nil)

// Analyzer is a mock implementation of bookgap.Analyzer.
type Analyzer struct {
	AnalyzeCategoryFn func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis
	AnalyzeAllFn      func(results map[string][]*bookgap.Product) []*bookgap.CategoryAnalysis
}

func (a *Analyzer) AnalyzeCategory(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
	return a.AnalyzeCategoryFn(category, products)
}

func (a *Analyzer) AnalyzeAll(results map[string][]*bookgap.Product) []*bookgap.CategoryAnalysis {
	return a.AnalyzeAllFn(results)
}
