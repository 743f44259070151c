package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCombinedRating(t *testing.T) {
	tests := []struct {
		name           string
		productRating  float64
		supplierRating float64
		expected       float64
	}{
		{"equal ratings", 0.5, 0.5, 0.5},
		{"high product low supplier", 0.98, 0.1, 0.54},
		{"rounding up", 0.333, 0.333, 0.33},
		{"rounding to two places", 0.555, 0.5, 0.53},
		{"zero ratings", 0, 0, 0},
		{"perfect ratings", 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CombinedRating(tt.productRating, tt.supplierRating))
		})
	}
}

func TestSearchQuery_Key(t *testing.T) {
	// Distinct filter combinations must map to distinct keys.
	keys := map[string]bool{}
	for _, q := range []SearchQuery{
		{},
		{Product: "owl"},
		{Category: "owl"},
		{Product: "owl", Category: "Birds"},
		{Product: "owlBirds"},
	} {
		keys[q.Key()] = true
	}
	assert.Len(t, keys, 5)
}

func TestSearchResult_IsStale(t *testing.T) {
	now := time.Now()
	limit := time.Hour

	fresh := SearchResult{LastUpdated: now.Add(-30 * time.Minute)}
	stale := SearchResult{LastUpdated: now.Add(-2 * time.Hour)}

	assert.False(t, fresh.IsStale(now, limit))
	assert.True(t, stale.IsStale(now, limit))
}

func TestAnyStale(t *testing.T) {
	now := time.Now()
	limit := time.Hour

	fresh := SearchResult{LastUpdated: now}
	stale := SearchResult{LastUpdated: now.Add(-90 * time.Minute)}

	assert.False(t, AnyStale(nil, now, limit), "empty set is not stale")
	assert.False(t, AnyStale([]SearchResult{fresh, fresh}, now, limit))
	assert.True(t, AnyStale([]SearchResult{fresh, stale}, now, limit))
}

func TestMergeRefreshed(t *testing.T) {
	now := time.Now()
	original := []SearchResult{
		{Product: "owl", Supplier: "DavesPets", Price: 3},
		{Product: "owl", Supplier: "iPet", Price: 4},
		{Product: "coyote", Supplier: "iPet", Price: 6},
	}
	refreshed := map[OfferKey]SearchResult{
		{Supplier: "iPet", Product: "owl"}:    {Product: "owl", Supplier: "iPet", Price: 5, LastUpdated: now},
		{Supplier: "iPet", Product: "coyote"}: {Product: "coyote", Supplier: "iPet", Price: 7, LastUpdated: now},
	}

	merged := MergeRefreshed(original, refreshed)

	// Ordering preserved, updates substituted, misses kept.
	assert.Equal(t, []string{"owl", "owl", "coyote"}, []string{merged[0].Product, merged[1].Product, merged[2].Product})
	assert.Equal(t, 3.0, merged[0].Price, "unrefreshed row keeps original values")
	assert.Equal(t, 5.0, merged[1].Price)
	assert.Equal(t, 7.0, merged[2].Price)
}

func TestUpsertOffer_Validate(t *testing.T) {
	valid := UpsertOffer{Product: "owl", Description: "wise", Category: "Birds", Price: 3, Supplier: "DavesPets"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*UpsertOffer)
	}{
		{"empty product", func(o *UpsertOffer) { o.Product = "" }},
		{"empty description", func(o *UpsertOffer) { o.Description = "" }},
		{"empty category", func(o *UpsertOffer) { o.Category = "" }},
		{"empty supplier", func(o *UpsertOffer) { o.Supplier = "" }},
		{"negative price", func(o *UpsertOffer) { o.Price = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := valid
			tt.mutate(&offer)

			err := offer.Validate()
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
