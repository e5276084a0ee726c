package models

import (
	"testing"
	"time"

	"bakery-menu-api/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCategoryDefaults(t *testing.T) {
	cat := DecodeCategory(docstore.Doc{ID: "c1", Data: map[string]any{}})

	assert.Equal(t, "c1", cat.ID)
	assert.Equal(t, "Unnamed Category", cat.Name)
	assert.Equal(t, "", cat.ImageURL)
	assert.True(t, cat.CreatedAt.IsZero(), "missing timestamp sorts as oldest")
}

func TestDecodeProductDefaults(t *testing.T) {
	p := DecodeProduct("cat1", docstore.Doc{ID: "p1", Data: map[string]any{}})

	assert.Equal(t, "Unnamed Item", p.Name)
	assert.Equal(t, float64(0), p.Price)
	assert.True(t, p.IsVeg, "missing veg flag defaults to vegetarian")
	assert.Nil(t, p.HalfPrice)
	assert.Empty(t, p.Serves)
	assert.Empty(t, p.Description)
	assert.Empty(t, p.ImageURLs)
}

func TestDecodeProductHalfPriceNullVsZero(t *testing.T) {
	// Explicit null stays absent
	absent := DecodeProduct("cat1", docstore.Doc{ID: "p1", Data: map[string]any{
		"name": "Brownie", "price": float64(120), "halfPrice": nil,
	}})
	assert.Nil(t, absent.HalfPrice)

	// A stored zero decodes to a pointer to zero
	zero := DecodeProduct("cat1", docstore.Doc{ID: "p2", Data: map[string]any{
		"name": "Sample Platter", "price": float64(120), "halfPrice": float64(0),
	}})
	require.NotNil(t, zero.HalfPrice)
	assert.Equal(t, float64(0), *zero.HalfPrice)
}

func TestDecodeProductImageFallback(t *testing.T) {
	p := DecodeProduct("cat1", docstore.Doc{ID: "p1", Data: map[string]any{
		"imageUrl": "data:image/jpeg;base64,abc",
	}})
	assert.Equal(t, []string{"data:image/jpeg;base64,abc"}, p.ImageURLs,
		"single thumbnail backfills the image list")

	multi := DecodeProduct("cat1", docstore.Doc{ID: "p2", Data: map[string]any{
		"imageUrls": []any{"a", "", "b"},
	}})
	assert.Equal(t, []string{"a", "b"}, multi.ImageURLs, "blank entries are dropped")
}

func TestDecodeProductCarriesTimestamp(t *testing.T) {
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	p := DecodeProduct("cat1", docstore.Doc{ID: "p1", CreatedAt: ts, Data: map[string]any{}})
	assert.Equal(t, ts, p.CreatedAt)
}

func TestDecodeDeliveryCharge(t *testing.T) {
	assert.Equal(t, 80, DecodeDeliveryCharge(docstore.Doc{Data: map[string]any{"amount": float64(80)}}))
	assert.Equal(t, DefaultDeliveryCharge, DecodeDeliveryCharge(docstore.Doc{Data: map[string]any{}}))
	assert.Equal(t, DefaultDeliveryCharge, DecodeDeliveryCharge(docstore.Doc{Data: map[string]any{"amount": float64(-5)}}))
}
