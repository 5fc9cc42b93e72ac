package main

import (
	"encoding/json"
	"fmt"

	"github.com/bookgap/bookgap"
	"github.com/bookgap/bookgap/fs"
)

// Report is the JSON document written by the report command.
type Report struct {
	Run           *bookgap.Run                `json:"run"`
	Opportunities []*bookgap.CategoryAnalysis `json:"opportunities"`
	Products      []*bookgap.Product          `json:"products"`
}

// Run executes the report command.
func (c *ReportCmd) Run(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.RunID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookgap.ErrorMessage(err))
		return err
	}

	products, err := deps.Products.FindProducts(deps.Ctx, bookgap.ProductFilter{RunID: &c.RunID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookgap.ErrorMessage(err))
		return err
	}

	results := make(map[string][]*bookgap.Product)
	for _, p := range products {
		results[p.Category] = append(results[p.Category], p)
	}

	report := Report{
		Run:           run,
		Opportunities: deps.Analyzer.AnalyzeAll(results),
		Products:      products,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	fmt.Fprintln(deps.Stdout, string(data))

	if c.OutDir != "" {
		store := fs.NewReportStore(c.OutDir)
		path, err := store.Save(c.RunID, report)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error writing report: %v\n", err)
			return err
		}
		fmt.Fprintf(deps.Stderr, "Report written to %s\n", path)
	}

	return nil
}
