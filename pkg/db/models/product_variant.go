package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is one size/colour stock unit. Color is nil when the
// product has no colour dimension.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Size      string    `gorm:"column:size;not null"`
	Color     *string   `gorm:"column:color"`
	Quantity  int       `gorm:"column:quantity;not null;default:0;check:chk_product_variants_quantity,quantity >= 0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
