package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createCatalogTables creates the products, suppliers and
// supplier_products tables. The DDL is portable SQL valid on both
// PostgreSQL and SQLite.
func createCatalogTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_catalog",
		Migrate: func(tx *gorm.DB) error {
			statements := []string{
				`CREATE TABLE IF NOT EXISTS products (
					name VARCHAR(255) PRIMARY KEY,
					description TEXT,
					category VARCHAR(255) NOT NULL,
					rating REAL DEFAULT 0.5,
					last_updated TIMESTAMP NOT NULL
				);`,
				`CREATE TABLE IF NOT EXISTS suppliers (
					name VARCHAR(255) PRIMARY KEY,
					pull_url TEXT,
					rating REAL DEFAULT 0.5
				);`,
				`CREATE TABLE IF NOT EXISTS supplier_products (
					supplier VARCHAR(255) NOT NULL REFERENCES suppliers(name),
					product VARCHAR(255) NOT NULL REFERENCES products(name),
					price REAL NOT NULL,
					PRIMARY KEY (supplier, product)
				);`,
				`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);`,
				`CREATE INDEX IF NOT EXISTS idx_supplier_products_product ON supplier_products(product);`,
			}

			for _, stmt := range statements {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			for _, stmt := range []string{
				"DROP TABLE IF EXISTS supplier_products;",
				"DROP TABLE IF EXISTS suppliers;",
				"DROP TABLE IF EXISTS products;",
			} {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}

			return nil
		},
	}
}
