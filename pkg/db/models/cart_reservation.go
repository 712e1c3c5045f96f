package models

import (
	"time"

	"github.com/google/uuid"
)

// CartReservation is a time-bounded hold on variant stock owned by a cart.
type CartReservation struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID    string    `gorm:"column:cart_id;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Size      string    `gorm:"column:size;not null"`
	Color     *string   `gorm:"column:color"`
	Quantity  int       `gorm:"column:quantity;not null;check:chk_cart_reservations_quantity,quantity > 0"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
