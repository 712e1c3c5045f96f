package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutiquenoire/storefront-backend/pkg/db/models"
)

// Repository persists cart reservation rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reservation *models.CartReservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartReservation, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int, expiresAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteIfExpired(ctx context.Context, id uuid.UUID, before time.Time) (bool, error)
	ListExpired(ctx context.Context, before time.Time, limit int) ([]models.CartReservation, error)
	ListByCart(ctx context.Context, cartID string, activeAt time.Time) ([]models.CartReservation, error)
	DeleteByCart(ctx context.Context, cartID string, ids []uuid.UUID) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type expiredReaper interface {
	CleanupExpired(ctx context.Context) (*ReapReport, error)
}
