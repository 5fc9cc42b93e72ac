package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/bookgap/bookgap"
	"github.com/bookgap/bookgap/mock"
	bgslog "github.com/bookgap/bookgap/slog"
	"github.com/stretchr/testify/assert"
)

func TestLoggingAnalyzer_AnalyzeCategory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.Analyzer{
		AnalyzeCategoryFn: func(category string, products []*bookgap.Product) *bookgap.CategoryAnalysis {
			return &bookgap.CategoryAnalysis{
				Category:         category,
				OpportunityScore: 72.5,
				Recommendation:   bookgap.RecommendHigh,
			}
		},
	}

	analyzer := bgslog.NewLoggingAnalyzer(inner, logger)
	analysis := analyzer.AnalyzeCategory("Children's Books > Picture Books", []*bookgap.Product{{Title: "Goodnight Moon"}})

	assert.Equal(t, 72.5, analysis.OpportunityScore)
	output := buf.String()
	assert.Contains(t, output, "category analysis")
	assert.Contains(t, output, "score=72.5")
	assert.Contains(t, output, "recommendation=high_opportunity")
}

func TestLoggingAnalyzer_AnalyzeAll(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.Analyzer{
		AnalyzeAllFn: func(results map[string][]*bookgap.Product) []*bookgap.CategoryAnalysis {
			return []*bookgap.CategoryAnalysis{{Category: "Self Help > Productivity"}}
		},
	}

	analyzer := bgslog.NewLoggingAnalyzer(inner, logger)
	analyses := analyzer.AnalyzeAll(map[string][]*bookgap.Product{
		"Self Help > Productivity": {{Title: "Deep Work"}},
		"Self Help > Minimalism":   {},
	})

	assert.Len(t, analyses, 1)
	output := buf.String()
	assert.Contains(t, output, "market analysis")
	assert.Contains(t, output, "categories=2")
	assert.Contains(t, output, "opportunities=1")
}
