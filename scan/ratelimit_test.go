package scan_test

import (
	"context"
	"testing"
	"time"

	"github.com/bookgap/bookgap/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("FirstRequestPerDomainIsImmediate", func(t *testing.T) {
		t.Parallel()

		limiter := scan.NewDomainLimiter(0.1)

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "www.noon.com"))
		require.NoError(t, limiter.Wait(context.Background(), "app.scrapingbee.com"))
		assert.Less(t, time.Since(start), 500*time.Millisecond, "distinct domains should not share a limiter")
	})

	t.Run("SecondRequestToSameDomainWaits", func(t *testing.T) {
		t.Parallel()

		limiter := scan.NewDomainLimiter(10)

		require.NoError(t, limiter.Wait(context.Background(), "www.noon.com"))
		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "www.noon.com"))
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		t.Parallel()

		limiter := scan.NewDomainLimiter(0.001)
		require.NoError(t, limiter.Wait(context.Background(), "www.noon.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "www.noon.com"))
	})
}
