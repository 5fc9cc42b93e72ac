package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/bookgap/bookgap"
	"github.com/bookgap/bookgap/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunService_CreateRun(t *testing.T) {
	t.Parallel()

	t.Run("creates run with generated ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		run := &bookgap.Run{}
		err := svc.CreateRun(ctx, run)
		require.NoError(t, err)

		assert.NotEmpty(t, run.ID, "ID should be generated")
		assert.False(t, run.StartedAt.IsZero(), "StartedAt should be set")
		assert.Nil(t, run.CompletedAt)
	})

	t.Run("preserves an explicit start time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		startedAt := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
		run := &bookgap.Run{StartedAt: startedAt}
		require.NoError(t, svc.CreateRun(ctx, run))

		found, err := svc.FindRunByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, startedAt, found.StartedAt)
	})
}

func TestRunService_FindRunByID(t *testing.T) {
	t.Parallel()

	t.Run("returns ENOTFOUND for missing run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)

		_, err := svc.FindRunByID(context.Background(), "no-such-run")
		require.Error(t, err)
		assert.Equal(t, bookgap.ENOTFOUND, bookgap.ErrorCode(err))
	})
}

func TestRunService_FindRuns(t *testing.T) {
	t.Parallel()

	t.Run("returns runs most recent first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		older := &bookgap.Run{StartedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
		newer := &bookgap.Run{StartedAt: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)}
		require.NoError(t, svc.CreateRun(ctx, older))
		require.NoError(t, svc.CreateRun(ctx, newer))

		runs, err := svc.FindRuns(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, newer.ID, runs[0].ID)
		assert.Equal(t, older.ID, runs[1].ID)
	})
}

func TestRunService_CompleteRun(t *testing.T) {
	t.Parallel()

	t.Run("records completion time and counters", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()

		run := &bookgap.Run{}
		require.NoError(t, svc.CreateRun(ctx, run))

		run.Categories = 4
		run.Products = 120
		run.Enriched = 30
		require.NoError(t, svc.CompleteRun(ctx, run))

		found, err := svc.FindRunByID(ctx, run.ID)
		require.NoError(t, err)
		require.NotNil(t, found.CompletedAt)
		assert.Equal(t, 4, found.Categories)
		assert.Equal(t, 120, found.Products)
		assert.Equal(t, 30, found.Enriched)
	})

	t.Run("returns ENOTFOUND for missing run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)

		err := svc.CompleteRun(context.Background(), &bookgap.Run{ID: "no-such-run", StartedAt: time.Now()})
		require.Error(t, err)
		assert.Equal(t, bookgap.ENOTFOUND, bookgap.ErrorCode(err))
	})
}
