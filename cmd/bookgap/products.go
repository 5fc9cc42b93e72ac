package main

import (
	"fmt"

	"github.com/bookgap/bookgap"
)

// Run executes the products command.
func (c *ProductsCmd) Run(deps *Dependencies) error {
	filter := bookgap.ProductFilter{
		RunID:  &c.RunID,
		Limit:  c.Limit,
		Offset: c.Offset,
	}
	if c.Category != "" {
		filter.Category = &c.Category
	}

	products, err := deps.Products.FindProducts(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookgap.ErrorMessage(err))
		return err
	}

	if len(products) == 0 {
		fmt.Fprintln(deps.Stdout, "No products found.")
		return nil
	}

	for _, p := range products {
		reviews := "-"
		if p.ReviewCount != nil {
			reviews = fmt.Sprintf("%d", *p.ReviewCount)
		}
		fmt.Fprintf(deps.Stdout, "%8.2f %s  %6s reviews  %-30s  %s\n",
			p.Price, p.Currency, reviews, p.Category, p.Title)
	}

	return nil
}
