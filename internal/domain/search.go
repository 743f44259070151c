package domain

import (
	"math"
	"time"
)

// SearchQuery holds the optional equality filters for an offer search.
// Empty strings mean "unfiltered".
type SearchQuery struct {
	Product  string
	Category string
}

// Key returns the cache key identifying this query. The separator cannot
// appear in a product or category name coming from the HTTP layer's query
// parameters, so distinct filter pairs never collide.
func (q SearchQuery) Key() string {
	return q.Product + "\x1f" + q.Category
}

// IsUnfiltered reports whether the query matches the whole catalog.
func (q SearchQuery) IsUnfiltered() bool {
	return q.Product == "" && q.Category == ""
}

// OfferKey identifies a (supplier, product) pair in a refresh result map.
type OfferKey struct {
	Supplier string
	Product  string
}

// SearchResult is one row of a search response: a product offered by a
// supplier at a price, ranked by the combined quality rating.
type SearchResult struct {
	Product        string    `json:"product"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Price          float64   `json:"price"`
	Supplier       string    `json:"supplier"`
	ProductRating  float64   `json:"product_rating"`
	SupplierRating float64   `json:"supplier_rating"`
	CombinedRating float64   `json:"combined_rating"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Key returns the (supplier, product) identity of this row.
func (r *SearchResult) Key() OfferKey {
	return OfferKey{Supplier: r.Supplier, Product: r.Product}
}

// IsStale reports whether the row's last update is older than limit
// relative to now.
func (r *SearchResult) IsStale(now time.Time, limit time.Duration) bool {
	return now.Sub(r.LastUpdated) > limit
}

// CombinedRating computes the ranking score for a (product, supplier)
// pair: the average of the two ratings rounded to 2 decimal places.
func CombinedRating(productRating, supplierRating float64) float64 {
	return roundTo2Decimals((productRating + supplierRating) / 2)
}

// AnyStale reports whether any row in the set is older than limit.
// An empty set is not stale; the orchestrator treats emptiness separately.
func AnyStale(results []SearchResult, now time.Time, limit time.Duration) bool {
	for i := range results {
		if results[i].IsStale(now, limit) {
			return true
		}
	}
	return false
}

// MergeRefreshed substitutes refreshed rows into the original sequence,
// keyed by (supplier, product). Rows without a successful refresh keep
// their original values; the original ordering is preserved.
func MergeRefreshed(original []SearchResult, refreshed map[OfferKey]SearchResult) []SearchResult {
	merged := make([]SearchResult, len(original))
	for i := range original {
		if r, ok := refreshed[original[i].Key()]; ok {
			merged[i] = r
		} else {
			merged[i] = original[i]
		}
	}
	return merged
}

// roundTo2Decimals rounds a float to 2 decimal places.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}
