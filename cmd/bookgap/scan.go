package main

import (
	"fmt"
	"regexp"

	"github.com/bookgap/bookgap"
	"github.com/bookgap/bookgap/scan"
)

// Run executes the scan command.
func (c *ScanCmd) Run(deps *Dependencies) error {
	// Preview mode: list discoverable product URLs without scanning.
	if c.Preview {
		var urlFilter *bookgap.URLFilter
		if len(c.Filter) > 0 {
			urlFilter = &bookgap.URLFilter{}
			for _, pattern := range c.Filter {
				re, err := regexp.Compile(pattern)
				if err != nil {
					fmt.Fprintf(deps.Stderr, "error: invalid filter pattern %q: %v\n", pattern, err)
					return err
				}
				urlFilter.Include = append(urlFilter.Include, re)
			}
		}

		urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.Origin, urlFilter)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", bookgap.ErrorMessage(err))
			return err
		}
		for _, u := range urls {
			fmt.Fprintln(deps.Stdout, u)
		}
		return nil
	}

	cfg, err := scan.LoadConfig(c.Config)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookgap.ErrorMessage(err))
		return err
	}

	progress := func(event scan.ProgressEvent) {
		switch event.Type {
		case scan.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Scanning %d categories\n", event.Total)
		case scan.ProgressCategoryCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s: %d products, score %.1f\n",
				event.Completed, event.Total, event.Category, event.Products, event.Score)
		case scan.ProgressCategorySkipped:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s: skipped (%d products)\n",
				event.Completed, event.Total, event.Category, event.Products)
		case scan.ProgressCategoryFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.Category, event.Error)
		}
	}

	result, err := deps.Scanner.Scan(deps.Ctx, cfg, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error scanning: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "\nScanned %d categories (%d skipped, %d enriched, %d failed), saved %d products\n",
		result.CategoriesScanned, result.CategoriesSkipped, result.CategoriesEnriched,
		result.Failed, result.ProductsSaved)
	if result.RunID != "" {
		fmt.Fprintf(deps.Stdout, "Run %s\n", result.RunID)
	}

	if len(result.Opportunities) == 0 {
		fmt.Fprintln(deps.Stdout, "No opportunities found.")
		return nil
	}

	fmt.Fprintln(deps.Stdout, "\nTop opportunities:")
	for i, a := range result.Opportunities {
		fmt.Fprintf(deps.Stdout, "  %2d. %-50s %6.1f  %s\n", i+1, a.Category, a.OpportunityScore, a.Recommendation)
	}

	return nil
}
