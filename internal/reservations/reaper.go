package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/boutiquenoire/storefront-backend/internal/inventory"
	"github.com/boutiquenoire/storefront-backend/pkg/db/models"
	"github.com/boutiquenoire/storefront-backend/pkg/enums"
	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
	"github.com/boutiquenoire/storefront-backend/pkg/logger"
	"github.com/boutiquenoire/storefront-backend/pkg/metrics"
)

const defaultReapBatch = 500

// ReapReport summarises one reaper pass.
type ReapReport struct {
	Scanned  int
	Restored int
	Orphaned int
	Skipped  int
	Failures []ReapFailure
}

// ReapFailure is an expired hold whose stock could not be returned. The row
// is left in place and retried on the next pass.
type ReapFailure struct {
	ReservationID uuid.UUID
	ProductID     uuid.UUID
	Size          string
	Color         *string
	Quantity      int
	Err           error
}

// Err folds every failure into one error, or nil when the pass was clean.
func (r *ReapReport) Err() error {
	if r == nil {
		return nil
	}
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, fmt.Errorf("reservation %s: %w", f.ReservationID, f.Err))
	}
	return err
}

// Reaper deletes expired holds and returns their stock.
type Reaper struct {
	repo     Repository
	tx       txRunner
	adjuster inventory.StockAdjuster
	logg     *logger.Logger
	metrics  *metrics.InventoryMetrics
	batch    int
	now      func() time.Time
}

type ReaperParams struct {
	Repo      Repository
	Tx        txRunner
	Adjuster  inventory.StockAdjuster
	Logger    *logger.Logger
	Metrics   *metrics.InventoryMetrics
	BatchSize int
	Now       func() time.Time
}

func NewReaper(params ReaperParams) (*Reaper, error) {
	if params.Repo == nil {
		return nil, errors.New("reservations repository required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Adjuster == nil {
		return nil, errors.New("inventory adjuster required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultReapBatch
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Reaper{
		repo:     params.Repo,
		tx:       params.Tx,
		adjuster: params.Adjuster,
		logg:     params.Logger,
		metrics:  params.Metrics,
		batch:    batch,
		now:      now,
	}, nil
}

// CleanupExpired processes up to one batch of holds whose expiry is strictly
// before now. Each hold is deleted and restocked in its own transaction; the
// restock only happens when this call performed the delete, so concurrent
// reapers return stock exactly once. Per-row failures land in the report and
// never stop the pass. The returned error is reserved for failing to list.
func (r *Reaper) CleanupExpired(ctx context.Context) (*ReapReport, error) {
	now := r.now().UTC()
	rows, err := r.repo.ListExpired(ctx, now, r.batch)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list expired reservations")
	}

	report := &ReapReport{Scanned: len(rows)}
	for _, row := range rows {
		outcome, err := r.reapOne(ctx, row, now)
		r.metrics.ObserveReap(outcome)
		rowCtx := r.logg.WithFields(ctx, map[string]any{
			"reservation_id": row.ID.String(),
			"cart_id":        row.CartID,
			"product_id":     row.ProductID.String(),
			"quantity":       row.Quantity,
		})
		switch outcome {
		case metrics.ReapRestored:
			report.Restored++
		case metrics.ReapOrphaned:
			report.Orphaned++
			r.logg.Warn(rowCtx, "expired reservation references a missing variant; deleted without restock")
		case metrics.ReapSkipped:
			report.Skipped++
		default:
			report.Failures = append(report.Failures, ReapFailure{
				ReservationID: row.ID,
				ProductID:     row.ProductID,
				Size:          row.Size,
				Color:         row.Color,
				Quantity:      row.Quantity,
				Err:           err,
			})
			r.logg.Error(rowCtx, "failed to restore expired reservation", err)
		}
	}
	return report, nil
}

func (r *Reaper) reapOne(ctx context.Context, row models.CartReservation, now time.Time) (string, error) {
	outcome := metrics.ReapFailed
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := r.repo.WithTx(tx).DeleteIfExpired(ctx, row.ID, now)
		if err != nil {
			return err
		}
		if !deleted {
			outcome = metrics.ReapSkipped
			return nil
		}

		key := inventory.VariantKey{ProductID: row.ProductID, Size: row.Size, Color: row.Color}
		_, err = r.adjuster.Adjust(ctx, tx, key, row.Quantity, enums.AdjustmentReservationExpired)
		switch {
		case err == nil:
			outcome = metrics.ReapRestored
			return nil
		case pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
			outcome = metrics.ReapOrphaned
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return metrics.ReapFailed, err
	}
	return outcome, nil
}
