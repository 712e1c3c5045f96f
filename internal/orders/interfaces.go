package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutiquenoire/storefront-backend/pkg/db/models"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ClaimInventoryRestored(ctx context.Context, id uuid.UUID, from, to bool) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ProductNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CartConsumer hands a cart's holds over to a new order.
type CartConsumer interface {
	ConsumeCart(ctx context.Context, tx *gorm.DB, cartID string) ([]models.CartReservation, error)
}
