package bookgap_test

import (
	"strings"
	"testing"
	"time"

	"github.com/bookgap/bookgap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() *bookgap.Product {
	return &bookgap.Product{
		Title:      "The Very Hungry Caterpillar",
		Price:      39.0,
		Currency:   "AED",
		ProductURL: "https://www.noon.com/uae-en/the-very-hungry-caterpillar/p",
		ScrapedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestProduct_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid product", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validProduct().Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()
		p := validProduct()
		p.Title = ""
		assert.Equal(t, bookgap.EINVALID, bookgap.ErrorCode(p.Validate()))
	})

	t.Run("title too long", func(t *testing.T) {
		t.Parallel()
		p := validProduct()
		p.Title = strings.Repeat("x", bookgap.MaxTitleLen+1)
		assert.Equal(t, bookgap.EINVALID, bookgap.ErrorCode(p.Validate()))
	})

	t.Run("price bounds", func(t *testing.T) {
		t.Parallel()

		for _, tt := range []struct {
			name  string
			price float64
			valid bool
		}{
			{"zero rejected", 0, false},
			{"negative rejected", -5, false},
			{"just above zero accepted", 0.01, true},
			{"upper bound accepted", 10000.0, true},
			{"above upper bound rejected", 10000.01, false},
		} {
			t.Run(tt.name, func(t *testing.T) {
				p := validProduct()
				p.Price = tt.price
				if tt.valid {
					assert.NoError(t, p.Validate())
				} else {
					assert.Equal(t, bookgap.EINVALID, bookgap.ErrorCode(p.Validate()))
				}
			})
		}
	})

	t.Run("missing URL", func(t *testing.T) {
		t.Parallel()
		p := validProduct()
		p.ProductURL = ""
		assert.Equal(t, bookgap.EINVALID, bookgap.ErrorCode(p.Validate()))
	})

	t.Run("rating out of range", func(t *testing.T) {
		t.Parallel()
		p := validProduct()
		rating := 5.5
		p.AverageRating = &rating
		assert.Equal(t, bookgap.EINVALID, bookgap.ErrorCode(p.Validate()))
	})

	t.Run("discount out of range", func(t *testing.T) {
		t.Parallel()
		p := validProduct()
		discount := 120.0
		p.DiscountPercentage = &discount
		assert.Equal(t, bookgap.EINVALID, bookgap.ErrorCode(p.Validate()))
	})

	t.Run("negative review count", func(t *testing.T) {
		t.Parallel()
		p := validProduct()
		n := -1
		p.ReviewCount = &n
		assert.Equal(t, bookgap.EINVALID, bookgap.ErrorCode(p.Validate()))
	})
}

func TestProduct_Clone(t *testing.T) {
	t.Parallel()

	p := validProduct()
	reviews := 10
	rating := 4.2
	p.ReviewCount = &reviews
	p.AverageRating = &rating

	clone := p.Clone()
	require.NotNil(t, clone.ReviewCount)
	*clone.ReviewCount = 99
	*clone.AverageRating = 1.0
	clone.Title = "Changed"

	assert.Equal(t, 10, *p.ReviewCount)
	assert.Equal(t, 4.2, *p.AverageRating)
	assert.Equal(t, "The Very Hungry Caterpillar", p.Title)
}

func TestNormalizeProductURL(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name   string
		raw    string
		origin string
		want   string
	}{
		{"absolute passes through", "https://www.noon.com/uae-en/x/p", "https://www.noon.com", "https://www.noon.com/uae-en/x/p"},
		{"rooted relative", "/uae-en/x/p", "https://www.noon.com", "https://www.noon.com/uae-en/x/p"},
		{"bare relative", "uae-en/x/p", "https://www.noon.com", "https://www.noon.com/uae-en/x/p"},
		{"trailing slash origin", "/uae-en/x/p", "https://www.noon.com/", "https://www.noon.com/uae-en/x/p"},
		{"empty origin falls back", "/uae-en/x/p", "", "https://www.noon.com/uae-en/x/p"},
		{"whitespace trimmed", "  /uae-en/x/p  ", "https://www.noon.com", "https://www.noon.com/uae-en/x/p"},
		{"empty input", "", "https://www.noon.com", ""},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, bookgap.NormalizeProductURL(tt.raw, tt.origin))
		})
	}
}
