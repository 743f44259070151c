// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

import (
	"time"
)

// DefaultRating is applied when a product or supplier is created without
// an explicit quality rating.
const DefaultRating = 0.5

// Product is a catalog item identified by its unique name.
type Product struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Rating      float64   `json:"rating"` // conventionally in [0,1]
	LastUpdated time.Time `json:"last_updated"`
}

// Supplier is a pricing source identified by its unique name.
// PullURL is the endpoint offers can be re-fetched from.
type Supplier struct {
	Name    string  `json:"name"`
	PullURL string  `json:"pull_url"`
	Rating  float64 `json:"rating"`
}

// SupplierOffer is the join entity: "this supplier offers this product
// at this price". A (supplier, product) pair is never duplicated.
type SupplierOffer struct {
	Supplier string  `json:"supplier"`
	Product  string  `json:"product"`
	Price    float64 `json:"price"`
}

// UpsertOffer carries everything needed to create or replace a supplier's
// offer for a product, including the product attributes written alongside.
type UpsertOffer struct {
	Product       string
	Description   string
	Category      string
	Price         float64
	Supplier      string
	ProductRating float64
	LastUpdated   time.Time
}

// Validate checks the invariants the persistence layer relies on.
func (o *UpsertOffer) Validate() error {
	switch {
	case o.Product == "":
		return Errorf(ErrValidation, "product name must not be empty")
	case o.Description == "":
		return Errorf(ErrValidation, "description must not be empty")
	case o.Category == "":
		return Errorf(ErrValidation, "category must not be empty")
	case o.Supplier == "":
		return Errorf(ErrValidation, "supplier name must not be empty")
	case o.Price < 0:
		return Errorf(ErrValidation, "price must not be negative, got %v", o.Price)
	}
	return nil
}
