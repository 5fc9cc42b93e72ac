package main

import (
	"context"
	"io"

	"github.com/bookgap/bookgap"
	"github.com/bookgap/bookgap/scan"
	"github.com/bookgap/bookgap/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	DB       *sqlite.DB
	Runs     bookgap.RunService
	Products bookgap.ProductService
	Sitemaps bookgap.SitemapService
	Analyzer bookgap.Analyzer
	Scanner  *scan.Scanner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Scan     ScanCmd     `cmd:"" help:"Scan the storefront and rank category opportunities"`
	Analyze  AnalyzeCmd  `cmd:"" help:"Re-analyze the products stored under a run"`
	Products ProductsCmd `cmd:"" help:"List products stored under a run"`
	Report   ReportCmd   `cmd:"" help:"Write a JSON report for a run"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	Config          string   `arg:"" help:"Path to the category tree JSON file"`
	Concurrency     int      `short:"c" default:"4" help:"Concurrent category limit"`
	EnrichThreshold float64  `short:"e" default:"50" help:"Minimum opportunity score for detail enrichment"`
	RPS             float64  `name:"rps" default:"1" help:"Requests per second per domain"`
	Origin          string   `default:"https://www.noon.com" help:"Storefront origin"`
	Direct          bool     `help:"Fetch directly without the rendering proxy"`
	Preview         bool     `short:"p" help:"List sitemap product URLs without scanning"`
	Filter          []string `short:"F" name:"filter" help:"Filter preview URLs by regex (repeatable)"`
	Verbose         bool     `short:"v" help:"Log fetches and extractions to stderr"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	RunID string `arg:"" name:"run" help:"Run ID"`
}

// ProductsCmd is the "products" subcommand.
type ProductsCmd struct {
	RunID    string `arg:"" name:"run" help:"Run ID"`
	Category string `short:"C" help:"Filter by category"`
	Limit    int    `default:"50" help:"Maximum products to list"`
	Offset   int    `help:"Products to skip"`
}

// ReportCmd is the "report" subcommand.
type ReportCmd struct {
	RunID  string `arg:"" name:"run" help:"Run ID"`
	OutDir string `short:"o" help:"Also write the report to <dir>/<run>.json"`
}
