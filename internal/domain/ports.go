package domain

import (
	"context"
)

// OfferRepository defines the interface for catalog persistence operations.
// Implementations: internal/infra/postgres/repository.go
type OfferRepository interface {
	// Search finds offers matching the given filters, ordered descending
	// by (product rating + supplier rating). Returns an empty slice, not
	// an error, when nothing matches.
	Search(ctx context.Context, query SearchQuery) ([]SearchResult, error)

	// UpsertOffer transactionally replaces the (supplier, product) offer:
	// removes any existing pair, inserts or updates the product, then
	// inserts the new offer row. Missing product and supplier rows are
	// created with default ratings.
	UpsertOffer(ctx context.Context, offer UpsertOffer) error

	// DeleteOffer removes the (supplier, product) offer. When the last
	// offer for a product is removed, the product row is deleted too.
	// Deleting a pair that does not exist is a no-op.
	DeleteOffer(ctx context.Context, product, supplier string) error

	// ApplyRefreshedResults updates each matching offer's price and the
	// product's last_updated timestamp, batched into one commit.
	ApplyRefreshedResults(ctx context.Context, results []SearchResult) error

	// InsertProduct, InsertSupplier and InsertOffer back the bulk
	// importer. InsertOffer reports ErrReferentialIntegrity when either
	// referenced entity is missing.
	InsertProduct(ctx context.Context, product Product) error
	InsertSupplier(ctx context.Context, supplier Supplier) error
	InsertOffer(ctx context.Context, offer SupplierOffer) error
}

// SupplierGateway fetches updated price data for a set of offers.
// Implementations: internal/infra/supplier/simulator.go (default) and
// internal/infra/supplier/remote.go (pull_url-backed).
type SupplierGateway interface {
	// Refresh issues one fetch per result concurrently and returns the
	// successfully refreshed rows keyed by (supplier, product). Failed
	// fetches are absent from the map, never an error: one failing
	// supplier must not block the rest.
	Refresh(ctx context.Context, results []SearchResult) map[OfferKey]SearchResult
}
