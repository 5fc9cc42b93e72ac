package slog

import (
	"log/slog"
	"time"

	"github.com/bookgap/bookgap"
)

// Ensure LoggingAnalyzer implements bookgap.Analyzer.
var _ bookgap.Analyzer = (*LoggingAnalyzer)(nil)

// LoggingAnalyzer wraps an Analyzer with logging.
type LoggingAnalyzer struct {
	next   bookgap.Analyzer
	logger *slog.Logger
}

// NewLoggingAnalyzer creates a new LoggingAnalyzer.
func NewLoggingAnalyzer(next bookgap.Analyzer, logger *slog.Logger) *LoggingAnalyzer {
	return &LoggingAnalyzer{next: next, logger: logger}
}

// AnalyzeCategory delegates to the wrapped analyzer and logs the outcome.
func (a *LoggingAnalyzer) AnalyzeCategory(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
	begin := time.Now()
	analysis := a.next.AnalyzeCategory(category, products)
	a.logger.Info("category analysis",
		"category", category,
		"products", len(products),
		"score", analysis.OpportunityScore,
		"recommendation", analysis.Recommendation,
		"duration", time.Since(begin),
	)
	return analysis
}

// AnalyzeAll delegates to the wrapped analyzer and logs the outcome.
func (a *LoggingAnalyzer) AnalyzeAll(results map[string][]*bookgap.Product) []*bookgap.CategoryAnalysis {
	begin := time.Now()
	analyses := a.next.AnalyzeAll(results)
	a.logger.Info("market analysis",
		"categories", len(results),
		"opportunities", len(analyses),
		"duration", time.Since(begin),
	)
	return analyses
}
