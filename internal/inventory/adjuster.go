package inventory

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/boutiquenoire/storefront-backend/pkg/db/models"
	"github.com/boutiquenoire/storefront-backend/pkg/enums"
	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
	"github.com/boutiquenoire/storefront-backend/pkg/metrics"
)

// StockAdjuster is the only mutator of variant quantities.
type StockAdjuster interface {
	Adjust(ctx context.Context, tx *gorm.DB, key VariantKey, delta int, reason enums.AdjustmentReason) (int, error)
}

// Adjuster applies signed deltas with a single guarded UPDATE so concurrent
// writers can never drive a quantity below zero.
type Adjuster struct {
	db      *gorm.DB
	metrics *metrics.InventoryMetrics
	now     func() time.Time
}

type AdjusterParams struct {
	DB      *gorm.DB
	Metrics *metrics.InventoryMetrics
	Now     func() time.Time
}

func NewAdjuster(params AdjusterParams) (*Adjuster, error) {
	if params.DB == nil {
		return nil, errors.New("db is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Adjuster{db: params.DB, metrics: params.Metrics, now: now}, nil
}

// Adjust adds delta to the variant addressed by key and returns the new
// quantity. It runs on tx when provided so the change commits or rolls back
// with the caller's other writes.
//
// A missing variant yields NOT_FOUND. A delta that would take the quantity
// below zero yields INSUFFICIENT_STOCK and leaves the row untouched.
func (a *Adjuster) Adjust(ctx context.Context, tx *gorm.DB, key VariantKey, delta int, reason enums.AdjustmentReason) (int, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	conn := a.conn(ctx, tx)

	if delta == 0 {
		variant, err := a.find(conn, key)
		if err != nil {
			a.observe(reason, err, 0)
			return 0, err
		}
		return variant.Quantity, nil
	}

	res := scopeKey(conn.Model(&models.ProductVariant{}), key).
		Where("quantity + ? >= 0", delta).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": a.now().UTC(),
		})
	if res.Error != nil {
		err := pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "adjust variant quantity")
		a.observe(reason, err, delta)
		return 0, err
	}

	variant, err := a.find(conn, key)
	if err != nil {
		a.observe(reason, err, delta)
		return 0, err
	}

	if res.RowsAffected == 0 {
		details := key.details()
		details["available"] = variant.Quantity
		details["requested"] = -delta
		err := pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for variant").WithDetails(details)
		a.observe(reason, err, delta)
		return variant.Quantity, err
	}

	a.observe(reason, nil, delta)
	return variant.Quantity, nil
}

// Quantity returns the current stock of the variant.
func (a *Adjuster) Quantity(ctx context.Context, tx *gorm.DB, key VariantKey) (int, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	variant, err := a.find(a.conn(ctx, tx), key)
	if err != nil {
		return 0, err
	}
	return variant.Quantity, nil
}

func (a *Adjuster) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return a.db.WithContext(ctx)
}

func (a *Adjuster) find(conn *gorm.DB, key VariantKey) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := scopeKey(conn.Model(&models.ProductVariant{}), key).Take(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found").WithDetails(key.details())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variant")
	}
	return &variant, nil
}

func (a *Adjuster) observe(reason enums.AdjustmentReason, err error, delta int) {
	result := metrics.AdjustApplied
	switch {
	case err == nil:
	case pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock):
		result = metrics.AdjustInsufficientStock
	case pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
		result = metrics.AdjustNotFound
	default:
		result = metrics.AdjustError
	}
	a.metrics.ObserveAdjustment(reason.String(), result, delta)
}

func scopeKey(q *gorm.DB, key VariantKey) *gorm.DB {
	q = q.Where("product_id = ? AND size = ?", key.ProductID, key.Size)
	if key.Color == nil {
		return q.Where("color IS NULL")
	}
	return q.Where("color = ?", *key.Color)
}
