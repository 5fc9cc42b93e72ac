package bookgap

import (
	"context"
	"time"
)

// Run represents one scan pass over a set of categories.
type Run struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Counters filled in as the run completes.
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Enriched   int `json:"enriched"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.StartedAt.IsZero() {
		return Errorf(EINVALID, "run start time required")
	}
	return nil
}

// RunService manages scan runs.
type RunService interface {
	// CreateRun creates a new run.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs, most recent first.
	FindRuns(ctx context.Context) ([]*Run, error)

	// CompleteRun records the completion time and final counters.
	// Returns ENOTFOUND if the run does not exist.
	CompleteRun(ctx context.Context, run *Run) error
}

// ProductFilter represents a filter for FindProducts.
type ProductFilter struct {
	RunID    *string `json:"runId"`
	Category *string `json:"category"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ProductService represents a service for managing extracted products.
type ProductService interface {
	// CreateProduct persists a product under a run.
	CreateProduct(ctx context.Context, product *Product) error

	// FindProducts retrieves products matching the filter.
	FindProducts(ctx context.Context, filter ProductFilter) ([]*Product, error)

	// DeleteProductsByRun removes all products for a run.
	DeleteProductsByRun(ctx context.Context, runID string) error
}
