package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookgap/bookgap"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ bookgap.RunService = (*RunService)(nil)

// RunService implements bookgap.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun creates a new run.
func (s *RunService) CreateRun(ctx context.Context, run *bookgap.Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, categories, products, enriched)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.Format(time.RFC3339), run.Categories, run.Products, run.Enriched)

	return err
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*bookgap.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, completed_at, categories, products, enriched
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, bookgap.Errorf(bookgap.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FindRuns retrieves runs, most recent first.
func (s *RunService) FindRuns(ctx context.Context) ([]*bookgap.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, completed_at, categories, products, enriched
		FROM runs
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*bookgap.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CompleteRun records the completion time and final counters.
func (s *RunService) CompleteRun(ctx context.Context, run *bookgap.Run) error {
	now := time.Now().UTC()
	run.CompletedAt = &now

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET completed_at = ?, categories = ?, products = ?, enriched = ?
		WHERE id = ?
	`, now.Format(time.RFC3339), run.Categories, run.Products, run.Enriched, run.ID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return bookgap.Errorf(bookgap.ENOTFOUND, "run not found")
	}
	return nil
}

// scanRun scans one run row using the given Scan function.
func scanRun(scan func(dest ...any) error) (*bookgap.Run, error) {
	var run bookgap.Run
	var startedAt, completedAt string

	if err := scan(&run.ID, &startedAt, &completedAt, &run.Categories, &run.Products, &run.Enriched); err != nil {
		return nil, err
	}

	var err error
	run.StartedAt, err = parseRFC3339(startedAt, "started_at")
	if err != nil {
		return nil, err
	}
	if completedAt != "" {
		t, err := parseRFC3339(completedAt, "completed_at")
		if err != nil {
			return nil, err
		}
		run.CompletedAt = &t
	}
	return &run, nil
}
