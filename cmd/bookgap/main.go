package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/bookgap/bookgap"
	"github.com/bookgap/bookgap/analyze"
	"github.com/bookgap/bookgap/goquery"
	bghttp "github.com/bookgap/bookgap/http"
	"github.com/bookgap/bookgap/scan"
	"github.com/bookgap/bookgap/scrapingbee"
	bgslog "github.com/bookgap/bookgap/slog"
	"github.com/bookgap/bookgap/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	RunService     bookgap.RunService
	ProductService bookgap.ProductService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("bookgap"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'bookgap --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set BOOKGAP_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.RunService = sqlite.NewRunService(m.DB)
	m.ProductService = sqlite.NewProductService(m.DB)
	deps.DB = m.DB
	deps.Runs = m.RunService
	deps.Products = m.ProductService
	deps.Sitemaps = bghttp.NewSitemapService(nil)
	deps.Analyzer = analyze.NewAnalyzer()

	if cmd == "scan" && !cli.Scan.Preview {
		var fetcher bookgap.Fetcher
		if cli.Scan.Direct {
			fetcher = bghttp.NewFetcher()
		} else {
			apiKey := os.Getenv("SCRAPINGBEE_API_KEY")
			if apiKey == "" {
				fmt.Fprintln(stderr, "SCRAPINGBEE_API_KEY environment variable not set. Get an API key at https://www.scrapingbee.com")
				return fmt.Errorf("SCRAPINGBEE_API_KEY not set")
			}
			fetcher = scrapingbee.NewFetcher(apiKey)
		}
		var listings bookgap.ListingExtractor = goquery.NewListingExtractor()
		var details bookgap.DetailExtractor = goquery.NewDetailExtractor()
		analyzer := deps.Analyzer

		if cli.Scan.Verbose {
			logger := slog.New(slog.NewTextHandler(stderr, nil))
			fetcher = bgslog.NewLoggingFetcher(fetcher, logger)
			listings = bgslog.NewLoggingListingExtractor(listings, logger)
			details = bgslog.NewLoggingDetailExtractor(details, logger)
			analyzer = bgslog.NewLoggingAnalyzer(analyzer, logger)
		}
		defer fetcher.Close()

		deps.Scanner = &scan.Scanner{
			Fetcher:         fetcher,
			Listings:        listings,
			Details:         details,
			Analyzer:        analyzer,
			Runs:            m.RunService,
			Products:        m.ProductService,
			RateLimiter:     scan.NewDomainLimiter(cli.Scan.RPS),
			Origin:          cli.Scan.Origin,
			Concurrency:     cli.Scan.Concurrency,
			EnrichThreshold: cli.Scan.EnrichThreshold,
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("BOOKGAP_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "bookgap.db"
	}
	dir := filepath.Join(home, ".bookgap")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "bookgap.db")
}
