package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bookgap/bookgap"
	main "github.com/bookgap/bookgap/cmd/bookgap"
	"github.com/bookgap/bookgap/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmdReport(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	deps := testDeps(stdout, stderr)

	deps.Runs = &mock.RunService{
		FindRunByIDFn: func(ctx context.Context, id string) (*bookgap.Run, error) {
			return &bookgap.Run{
				ID:        id,
				StartedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
				Products:  2,
			}, nil
		},
	}
	deps.Products = &mock.ProductService{
		FindProductsFn: func(ctx context.Context, filter bookgap.ProductFilter) ([]*bookgap.Product, error) {
			return []*bookgap.Product{
				{Title: "Goodnight Moon", Price: 25.0, Currency: "AED", Category: "Picture Books"},
				{Title: "Room on the Broom", Price: 32.0, Currency: "AED", Category: "Picture Books"},
			}, nil
		},
	}
	deps.Analyzer = &mock.Analyzer{
		AnalyzeAllFn: func(results map[string][]*bookgap.Product) []*bookgap.CategoryAnalysis {
			return []*bookgap.CategoryAnalysis{
				{Category: "Picture Books", OpportunityScore: 63.5, Recommendation: bookgap.RecommendModerate},
			}
		},
	}

	outDir := t.TempDir()
	cmd := &main.ReportCmd{RunID: "run-1", OutDir: outDir}
	require.NoError(t, cmd.Run(deps))

	var report main.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))

	require.NotNil(t, report.Run)
	assert.Equal(t, "run-1", report.Run.ID)
	require.Len(t, report.Opportunities, 1)
	assert.Equal(t, 63.5, report.Opportunities[0].OpportunityScore)
	assert.Len(t, report.Products, 2)

	saved, err := os.ReadFile(filepath.Join(outDir, "run-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "Goodnight Moon")
}
