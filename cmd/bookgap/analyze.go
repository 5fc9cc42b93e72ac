package main

import (
	"fmt"

	"github.com/bookgap/bookgap"
)

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	if _, err := deps.Runs.FindRunByID(deps.Ctx, c.RunID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookgap.ErrorMessage(err))
		return err
	}

	products, err := deps.Products.FindProducts(deps.Ctx, bookgap.ProductFilter{RunID: &c.RunID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookgap.ErrorMessage(err))
		return err
	}

	if len(products) == 0 {
		fmt.Fprintln(deps.Stdout, "No products stored for this run.")
		return nil
	}

	results := make(map[string][]*bookgap.Product)
	for _, p := range products {
		results[p.Category] = append(results[p.Category], p)
	}

	analyses := deps.Analyzer.AnalyzeAll(results)
	if len(analyses) == 0 {
		fmt.Fprintln(deps.Stdout, "No opportunities found.")
		return nil
	}

	for i, a := range analyses {
		fmt.Fprintf(deps.Stdout, "%2d. %-50s %6.1f  %-22s demand=%s competition=%s\n",
			i+1, a.Category, a.OpportunityScore, a.Recommendation, a.DemandLevel, a.CompetitionLevel)
	}

	return nil
}
