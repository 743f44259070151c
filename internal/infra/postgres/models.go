package postgres

import (
	"time"

	"product-comparison-service/internal/domain"
)

// ProductModel is the GORM model for the products table.
type ProductModel struct {
	Name        string    `gorm:"primaryKey;type:varchar(255)"`
	Description string    `gorm:"type:text"`
	Category    string    `gorm:"type:varchar(255);not null;index:idx_products_category"`
	Rating      float64   `gorm:"default:0.5"`
	LastUpdated time.Time `gorm:"not null"`
}

// TableName returns the table name for ProductModel.
func (ProductModel) TableName() string {
	return "products"
}

// SupplierModel is the GORM model for the suppliers table.
type SupplierModel struct {
	Name    string  `gorm:"primaryKey;type:varchar(255)"`
	PullURL string  `gorm:"type:text"`
	Rating  float64 `gorm:"default:0.5"`
}

// TableName returns the table name for SupplierModel.
func (SupplierModel) TableName() string {
	return "suppliers"
}

// SupplierProductModel is the GORM model for the supplier_products join
// table. The composite primary key enforces the one-offer-per-pair rule.
type SupplierProductModel struct {
	Supplier string  `gorm:"primaryKey;type:varchar(255)"`
	Product  string  `gorm:"primaryKey;type:varchar(255)"`
	Price    float64 `gorm:"not null"`
}

// TableName returns the table name for SupplierProductModel.
func (SupplierProductModel) TableName() string {
	return "supplier_products"
}

// searchRow is the scan target for the three-table search join.
type searchRow struct {
	Product        string    `gorm:"column:product"`
	Description    string    `gorm:"column:description"`
	Category       string    `gorm:"column:category"`
	Price          float64   `gorm:"column:price"`
	Supplier       string    `gorm:"column:supplier"`
	ProductRating  float64   `gorm:"column:product_rating"`
	SupplierRating float64   `gorm:"column:supplier_rating"`
	LastUpdated    time.Time `gorm:"column:last_updated"`
}

// toDomain converts a joined row into a SearchResult, computing the
// combined ranking score.
func (r *searchRow) toDomain() domain.SearchResult {
	return domain.SearchResult{
		Product:        r.Product,
		Description:    r.Description,
		Category:       r.Category,
		Price:          r.Price,
		Supplier:       r.Supplier,
		ProductRating:  r.ProductRating,
		SupplierRating: r.SupplierRating,
		CombinedRating: domain.CombinedRating(r.ProductRating, r.SupplierRating),
		LastUpdated:    r.LastUpdated,
	}
}
