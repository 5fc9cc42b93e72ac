package mock

import (
	"context"

	"github.com/bookgap/bookgap"
)

var _ bookgap.ProductService = (*ProductService)(nil)

// ProductService is a mock implementation of bookgap.ProductService.
type ProductService struct {
	CreateProductFn       func(ctx context.Context, product *bookgap.Product) error
	FindProductsFn        func(ctx context.Context, filter bookgap.ProductFilter) ([]*bookgap.Product, error)
	DeleteProductsByRunFn func(ctx context.Context, runID string) error
}

func (s *ProductService) CreateProduct(ctx context.Context, product *bookgap.Product) error {
	return s.CreateProductFn(ctx, product)
}

func (s *ProductService) FindProducts(ctx context.Context, filter bookgap.ProductFilter) ([]*bookgap.Product, error) {
	return s.FindProductsFn(ctx, filter)
}

func (s *ProductService) DeleteProductsByRun(ctx context.Context, runID string) error {
	return s.DeleteProductsByRunFn(ctx, runID)
}

var _ bookgap.RunService = (*RunService)(nil)

// RunService is a mock implementation of bookgap.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *bookgap.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*bookgap.Run, error)
	FindRunsFn    func(ctx context.Context) ([]*bookgap.Run, error)
	CompleteRunFn func(ctx context.Context, run *bookgap.Run) error
}

func (s *RunService) CreateRun(ctx context.Context, run *bookgap.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*bookgap.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context) ([]*bookgap.Run, error) {
	return s.FindRunsFn(ctx)
}

func (s *RunService) CompleteRun(ctx context.Context, run *bookgap.Run) error {
	return s.CompleteRunFn(ctx, run)
}
