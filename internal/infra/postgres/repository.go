package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"product-comparison-service/internal/domain"
)

// Repository implements domain.OfferRepository over the relational store.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Search finds offers matching the given filters by joining products,
// supplier_products and suppliers, ordered descending by the rating sum.
// An empty result set is not an error.
func (r *Repository) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	q := r.db.WithContext(ctx).
		Table("products").
		Select(
			"products.name AS product, " +
				"products.description AS description, " +
				"products.category AS category, " +
				"supplier_products.price AS price, " +
				"supplier_products.supplier AS supplier, " +
				"products.rating AS product_rating, " +
				"suppliers.rating AS supplier_rating, " +
				"products.last_updated AS last_updated",
		).
		Joins("INNER JOIN supplier_products ON products.name = supplier_products.product").
		Joins("INNER JOIN suppliers ON supplier_products.supplier = suppliers.name")

	if query.Product != "" {
		q = q.Where("products.name = ?", query.Product)
	}
	if query.Category != "" {
		q = q.Where("products.category = ?", query.Category)
	}

	var rows []searchRow
	if err := q.Order("(products.rating + suppliers.rating) DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("searching offers: %w", err)
	}

	results := make([]domain.SearchResult, len(rows))
	for i := range rows {
		results[i] = rows[i].toDomain()
	}

	return results, nil
}

// UpsertOffer transactionally replaces the (supplier, product) offer.
// The three steps commit as one unit: a failure in any of them rolls the
// whole operation back.
func (r *Repository) UpsertOffer(ctx context.Context, offer domain.UpsertOffer) error {
	if err := offer.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Drop the existing pair so the new price replaces it.
		if err := tx.
			Where("supplier = ? AND product = ?", offer.Supplier, offer.Product).
			Delete(&SupplierProductModel{}).Error; err != nil {
			return fmt.Errorf("removing existing offer: %w", err)
		}

		product := ProductModel{
			Name:        offer.Product,
			Description: offer.Description,
			Category:    offer.Category,
			Rating:      offer.ProductRating,
			LastUpdated: offer.LastUpdated,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "category", "rating", "last_updated",
			}),
		}).Create(&product).Error; err != nil {
			return fmt.Errorf("upserting product: %w", err)
		}

		// A supplier seen for the first time is created with the default
		// rating; an existing one keeps its attributes.
		supplier := SupplierModel{Name: offer.Supplier, Rating: domain.DefaultRating}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&supplier).Error; err != nil {
			return fmt.Errorf("ensuring supplier: %w", err)
		}

		pair := SupplierProductModel{
			Supplier: offer.Supplier,
			Product:  offer.Product,
			Price:    offer.Price,
		}
		if err := tx.Create(&pair).Error; err != nil {
			return fmt.Errorf("inserting offer: %w", err)
		}

		return nil
	})
}

// DeleteOffer removes the (supplier, product) offer and, when no offer
// remains for that product, the product row too (cascade-on-empty).
// Deleting a pair that does not exist leaves the store unchanged.
func (r *Repository) DeleteOffer(ctx context.Context, product, supplier string) error {
	if product == "" || supplier == "" {
		return domain.Errorf(domain.ErrValidation, "product and supplier must not be empty")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("supplier = ? AND product = ?", supplier, product).
			Delete(&SupplierProductModel{}).Error; err != nil {
			return fmt.Errorf("deleting offer: %w", err)
		}

		var remaining int64
		if err := tx.Model(&SupplierProductModel{}).
			Where("product = ?", product).
			Count(&remaining).Error; err != nil {
			return fmt.Errorf("counting remaining offers: %w", err)
		}

		if remaining == 0 {
			if err := tx.
				Where("name = ?", product).
				Delete(&ProductModel{}).Error; err != nil {
				return fmt.Errorf("deleting orphan product: %w", err)
			}
		}

		return nil
	})
}

// ApplyRefreshedResults updates each matching offer's price and the
// product's last_updated timestamp, batched into one commit.
func (r *Repository) ApplyRefreshedResults(ctx context.Context, results []domain.SearchResult) error {
	if len(results) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range results {
			res := &results[i]

			if err := tx.Model(&SupplierProductModel{}).
				Where("supplier = ? AND product = ?", res.Supplier, res.Product).
				Update("price", res.Price).Error; err != nil {
				return fmt.Errorf("updating offer price: %w", err)
			}

			if err := tx.Model(&ProductModel{}).
				Where("name = ?", res.Product).
				Update("last_updated", res.LastUpdated).Error; err != nil {
				return fmt.Errorf("updating product timestamp: %w", err)
			}
		}

		return nil
	})
}

// ListSuppliers returns the supplier rows for the given names. Unknown
// names are simply absent from the result.
func (r *Repository) ListSuppliers(ctx context.Context, names []string) ([]domain.Supplier, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var models []SupplierModel
	if err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}

	suppliers := make([]domain.Supplier, len(models))
	for i, m := range models {
		suppliers[i] = domain.Supplier{Name: m.Name, PullURL: m.PullURL, Rating: m.Rating}
	}

	return suppliers, nil
}

// InsertProduct inserts a product row for the bulk importer.
func (r *Repository) InsertProduct(ctx context.Context, product domain.Product) error {
	if product.Name == "" || product.Category == "" {
		return domain.Errorf(domain.ErrValidation, "product name and category must not be empty")
	}

	model := ProductModel{
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Rating:      product.Rating,
		LastUpdated: product.LastUpdated,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Errorf(domain.ErrValidation, "product %q already exists", product.Name)
		}
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

// InsertSupplier inserts a supplier row for the bulk importer.
func (r *Repository) InsertSupplier(ctx context.Context, supplier domain.Supplier) error {
	if supplier.Name == "" {
		return domain.Errorf(domain.ErrValidation, "supplier name must not be empty")
	}

	model := SupplierModel{
		Name:    supplier.Name,
		PullURL: supplier.PullURL,
		Rating:  supplier.Rating,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Errorf(domain.ErrValidation, "supplier %q already exists", supplier.Name)
		}
		return fmt.Errorf("inserting supplier: %w", err)
	}

	return nil
}

// InsertOffer inserts an offer row for the bulk importer. Unlike the
// upsert path it does not auto-create the referenced entities: both sides
// must already exist.
func (r *Repository) InsertOffer(ctx context.Context, offer domain.SupplierOffer) error {
	if offer.Supplier == "" || offer.Product == "" {
		return domain.Errorf(domain.ErrValidation, "supplier and product must not be empty")
	}
	if offer.Price < 0 {
		return domain.Errorf(domain.ErrValidation, "price must not be negative, got %v", offer.Price)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ProductModel{}).Where("name = ?", offer.Product).Count(&count).Error; err != nil {
			return fmt.Errorf("checking product: %w", err)
		}
		if count == 0 {
			return domain.Errorf(domain.ErrReferentialIntegrity, "product %q does not exist", offer.Product)
		}

		if err := tx.Model(&SupplierModel{}).Where("name = ?", offer.Supplier).Count(&count).Error; err != nil {
			return fmt.Errorf("checking supplier: %w", err)
		}
		if count == 0 {
			return domain.Errorf(domain.ErrReferentialIntegrity, "supplier %q does not exist", offer.Supplier)
		}

		model := SupplierProductModel{
			Supplier: offer.Supplier,
			Product:  offer.Product,
			Price:    offer.Price,
		}
		if err := tx.Create(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.Errorf(domain.ErrValidation,
					"offer (%s, %s) already exists", offer.Supplier, offer.Product)
			}
			return fmt.Errorf("inserting offer: %w", err)
		}

		return nil
	})
}
