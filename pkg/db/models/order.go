package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/boutiquenoire/storefront-backend/pkg/enums"
	"github.com/boutiquenoire/storefront-backend/pkg/types"
)

// Order is a phone-confirmed storefront order. Items is a snapshot taken at
// creation and never follows later catalog edits.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CartID            string            `gorm:"column:cart_id;not null" json:"cart_id"`
	CustomerName      string            `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerPhone     string            `gorm:"column:customer_phone;not null" json:"customer_phone"`
	Status            enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	Notes             *string           `gorm:"column:notes" json:"notes,omitempty"`
	Items             types.OrderItems  `gorm:"column:items;type:jsonb;serializer:json;not null" json:"items"`
	InventoryRestored bool              `gorm:"column:inventory_restored;not null;default:false" json:"inventory_restored"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
