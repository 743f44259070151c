// Package dto defines request and response shapes for the HTTP API.
package dto

import (
	"product-comparison-service/internal/domain"
)

// SearchRequest represents GET /product query parameters. Both filters
// are optional; an empty request returns the whole catalog.
type SearchRequest struct {
	Product  string `query:"product" validate:"omitempty,max=255"`
	Category string `query:"category" validate:"omitempty,max=255"`
}

// ToSearchQuery converts the request to a domain query.
func (r SearchRequest) ToSearchQuery() domain.SearchQuery {
	return domain.SearchQuery{
		Product:  r.Product,
		Category: r.Category,
	}
}

// UpsertRequest represents PUT /product parameters. Price is a pointer
// so an absent parameter is distinguishable from an explicit 0.
type UpsertRequest struct {
	Product       string   `query:"product" validate:"required,max=255"`
	Description   string   `query:"description" validate:"required,max=1024"`
	Category      string   `query:"category" validate:"required,max=255"`
	Price         *float64 `query:"price" validate:"required,min=0"`
	Supplier      string   `query:"supplier" validate:"required,max=255"`
	ProductRating *float64 `query:"product_rating" validate:"omitempty,min=0,max=1"`
}

// ToUpsertOffer converts the request to a domain offer. An absent
// product_rating falls back to the default rating.
func (r UpsertRequest) ToUpsertOffer() domain.UpsertOffer {
	rating := domain.DefaultRating
	if r.ProductRating != nil {
		rating = *r.ProductRating
	}

	var price float64
	if r.Price != nil {
		price = *r.Price
	}

	return domain.UpsertOffer{
		Product:       r.Product,
		Description:   r.Description,
		Category:      r.Category,
		Price:         price,
		Supplier:      r.Supplier,
		ProductRating: rating,
	}
}

// DeleteRequest represents DELETE /product parameters.
type DeleteRequest struct {
	Product  string `query:"product" validate:"required,max=255"`
	Supplier string `query:"supplier" validate:"required,max=255"`
}
