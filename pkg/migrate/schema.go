package migrate

import (
	"fmt"

	"github.com/boutiquenoire/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// variantKeyIndex mirrors the postgres unique index so a NULL colour still
// identifies exactly one variant per size.
const variantKeyIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_product_variants_key
	ON product_variants (product_id, size, COALESCE(color, ''))`

// AutoMigrate builds the schema from the gorm models. It backs the sqlite
// mode and tests; postgres deployments use the goose migrations.
func AutoMigrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if err := conn.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.CartReservation{},
		&models.Order{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := conn.Exec(variantKeyIndex).Error; err != nil {
		return fmt.Errorf("create variant key index: %w", err)
	}
	return nil
}
