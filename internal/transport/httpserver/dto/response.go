package dto

import (
	"time"

	"product-comparison-service/internal/domain"
)

// SearchResultResponse represents one (product, supplier) offer row.
type SearchResultResponse struct {
	Product        string  `json:"product"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Supplier       string  `json:"supplier"`
	ProductRating  float64 `json:"product_rating"`
	SupplierRating float64 `json:"supplier_rating"`
	CombinedRating float64 `json:"combined_rating"`
	LastUpdated    string  `json:"last_updated"`
}

// FromSearchResult converts a domain row to its response shape.
func FromSearchResult(r domain.SearchResult) SearchResultResponse {
	return SearchResultResponse{
		Product:        r.Product,
		Description:    r.Description,
		Category:       r.Category,
		Price:          r.Price,
		Supplier:       r.Supplier,
		ProductRating:  r.ProductRating,
		SupplierRating: r.SupplierRating,
		CombinedRating: r.CombinedRating,
		LastUpdated:    r.LastUpdated.Format(time.RFC3339),
	}
}

// SearchResponse represents the GET /product response.
type SearchResponse struct {
	Success       bool                   `json:"success"`
	SearchResults []SearchResultResponse `json:"search_results"`
}

// FromSearchResults converts a result set to the response envelope.
func FromSearchResults(results []domain.SearchResult) SearchResponse {
	rows := make([]SearchResultResponse, len(results))
	for i, r := range results {
		rows[i] = FromSearchResult(r)
	}

	return SearchResponse{
		Success:       true,
		SearchResults: rows,
	}
}

// UpsertedOffer echoes the stored offer in the PUT /product response.
type UpsertedOffer struct {
	Product       string  `json:"product"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	Supplier      string  `json:"supplier"`
	ProductRating float64 `json:"product_rating"`
	LastUpdated   string  `json:"last_updated"`
}

// UpsertResponse represents the PUT /product response.
type UpsertResponse struct {
	Success  bool          `json:"success"`
	Upserted UpsertedOffer `json:"upserted"`
}

// FromUpsertOffer converts the stored offer to the response envelope.
func FromUpsertOffer(o domain.UpsertOffer) UpsertResponse {
	return UpsertResponse{
		Success: true,
		Upserted: UpsertedOffer{
			Product:       o.Product,
			Description:   o.Description,
			Category:      o.Category,
			Price:         o.Price,
			Supplier:      o.Supplier,
			ProductRating: o.ProductRating,
			LastUpdated:   o.LastUpdated.Format(time.RFC3339),
		},
	}
}

// DeletedOffer identifies the removed (product, supplier) pair.
type DeletedOffer struct {
	Product  string `json:"product"`
	Supplier string `json:"supplier"`
}

// DeleteResponse represents the DELETE /product response.
type DeleteResponse struct {
	Success bool         `json:"success"`
	Deleted DeletedOffer `json:"deleted"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
