package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutiquenoire/storefront-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reservations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, reservation *models.CartReservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(reservation).Error
}

// FindByID returns nil, nil when no row exists.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartReservation, error) {
	var reservation models.CartReservation
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.CartReservation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity":   quantity,
			"expires_at": expiresAt,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CartReservation{})
	return res.RowsAffected == 1, res.Error
}

// DeleteIfExpired removes the row only while it is still past before. It
// reports false when another caller already removed or refreshed it.
func (r *repository) DeleteIfExpired(ctx context.Context, id uuid.UUID, before time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND expires_at < ?", id, before).
		Delete(&models.CartReservation{})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) ListExpired(ctx context.Context, before time.Time, limit int) ([]models.CartReservation, error) {
	var rows []models.CartReservation
	q := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByCart returns the cart's holds that have not expired at activeAt.
func (r *repository) ListByCart(ctx context.Context, cartID string, activeAt time.Time) ([]models.CartReservation, error) {
	var rows []models.CartReservation
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND expires_at >= ?", cartID, activeAt).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByCart deletes the listed holds of the cart and reports how many rows
// were still there to delete.
func (r *repository) DeleteByCart(ctx context.Context, cartID string, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND id IN ?", cartID, ids).
		Delete(&models.CartReservation{})
	return res.RowsAffected, res.Error
}
