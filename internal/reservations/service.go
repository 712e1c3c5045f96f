package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutiquenoire/storefront-backend/internal/inventory"
	"github.com/boutiquenoire/storefront-backend/pkg/db/models"
	"github.com/boutiquenoire/storefront-backend/pkg/enums"
	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
	"github.com/boutiquenoire/storefront-backend/pkg/logger"
)

const DefaultTTL = 15 * time.Minute

// Service manages cart stock holds.
type Service interface {
	Reserve(ctx context.Context, input ReserveInput) (*ReservationResult, error)
	Release(ctx context.Context, cartID string, reservationID uuid.UUID) (*ReservationResult, error)
	ConsumeCart(ctx context.Context, tx *gorm.DB, cartID string) ([]models.CartReservation, error)
	CleanupExpired(ctx context.Context) (*ReapReport, error)
}

type service struct {
	repo           Repository
	tx             txRunner
	adjuster       inventory.StockAdjuster
	locker         inventory.Locker
	reaper         expiredReaper
	logg           *logger.Logger
	ttl            time.Duration
	legacyStandard bool
	now            func() time.Time
}

type ServiceParams struct {
	Repo                Repository
	Tx                  txRunner
	Adjuster            inventory.StockAdjuster
	Locker              inventory.Locker
	Reaper              expiredReaper
	Logger              *logger.Logger
	TTL                 time.Duration
	LegacyStandardColor bool
	Now                 func() time.Time
}

// NewService builds a reservation service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("reservations repository required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Adjuster == nil {
		return nil, errors.New("inventory adjuster required")
	}
	if params.Locker == nil {
		return nil, errors.New("product locker required")
	}
	if params.Reaper == nil {
		return nil, errors.New("reaper required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:           params.Repo,
		tx:             params.Tx,
		adjuster:       params.Adjuster,
		locker:         params.Locker,
		reaper:         params.Reaper,
		logg:           params.Logger,
		ttl:            ttl,
		legacyStandard: params.LegacyStandardColor,
		now:            now,
	}, nil
}

// Reserve creates or mutates a hold. Expired holds are always reaped first
// so stock they free is available to this request.
func (s *service) Reserve(ctx context.Context, input ReserveInput) (*ReservationResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	key := inventory.NewVariantKey(input.ProductID, input.Size, input.Color, s.legacyStandard)
	ctx = s.logg.WithCartID(ctx, input.CartID)

	s.reap(ctx)

	unlock, err := s.locker.Lock(ctx, key.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if input.ReservationID == nil {
		return s.create(ctx, input, key)
	}
	return s.update(ctx, input, key)
}

// Release drops a hold and returns its stock.
func (s *service) Release(ctx context.Context, cartID string, reservationID uuid.UUID) (*ReservationResult, error) {
	if cartID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart_id is required")
	}
	ctx = s.logg.WithCartID(ctx, cartID)

	s.reap(ctx)

	row, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reservation")
	}
	if row == nil || row.CartID != cartID {
		return nil, reservationNotFound(reservationID)
	}

	unlock, err := s.locker.Lock(ctx, row.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	input := ReserveInput{
		CartID:        cartID,
		ProductID:     row.ProductID,
		Size:          row.Size,
		Color:         row.Color,
		Quantity:      0,
		ReservationID: &reservationID,
	}
	key := inventory.VariantKey{ProductID: row.ProductID, Size: row.Size, Color: row.Color}
	return s.update(ctx, input, key)
}

// ConsumeCart deletes the cart's unexpired holds without restocking. The
// stock stays deducted on behalf of the order being written in tx. Expired
// holds are left to the reaper, which returns their stock. When a listed hold
// is gone by the time it is deleted, the checkout fails with CONFLICT so the
// order never claims stock that was handed back.
func (s *service) ConsumeCart(ctx context.Context, tx *gorm.DB, cartID string) ([]models.CartReservation, error) {
	repo := s.repo.WithTx(tx)
	rows, err := repo.ListByCart(ctx, cartID, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart reservations")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	deleted, err := repo.DeleteByCart(ctx, cartID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart reservations")
	}
	if deleted != int64(len(ids)) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart reservations changed during checkout").
			WithDetails(map[string]any{"cart_id": cartID, "expected": len(ids), "deleted": deleted})
	}
	return rows, nil
}

func (s *service) CleanupExpired(ctx context.Context) (*ReapReport, error) {
	return s.reaper.CleanupExpired(ctx)
}

func (s *service) create(ctx context.Context, input ReserveInput, key inventory.VariantKey) (*ReservationResult, error) {
	now := s.now().UTC()
	row := &models.CartReservation{
		ID:        uuid.New(),
		CartID:    input.CartID,
		ProductID: key.ProductID,
		Size:      key.Size,
		Color:     key.Color,
		Quantity:  input.Quantity,
		ExpiresAt: now.Add(s.ttl),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.adjuster.Adjust(ctx, tx, key, -input.Quantity, enums.AdjustmentReservationHold); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	expiresAt := row.ExpiresAt
	return &ReservationResult{
		ReservationID: row.ID,
		Quantity:      row.Quantity,
		ExpiresAt:     &expiresAt,
		Created:       true,
	}, nil
}

func (s *service) update(ctx context.Context, input ReserveInput, key inventory.VariantKey) (*ReservationResult, error) {
	id := *input.ReservationID
	var result *ReservationResult

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reservation")
		}
		if row == nil || row.CartID != input.CartID {
			return reservationNotFound(id)
		}
		if err := matchesVariant(row, key); err != nil {
			return err
		}
		rowKey := inventory.VariantKey{ProductID: row.ProductID, Size: row.Size, Color: row.Color}

		if input.Quantity <= 0 {
			if err := s.restore(ctx, tx, rowKey, row); err != nil {
				return err
			}
			if _, err := repo.Delete(ctx, row.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete reservation")
			}
			result = released(row.ID)
			return nil
		}

		if delta := input.Quantity - row.Quantity; delta != 0 {
			reason := enums.AdjustmentReservationHold
			if delta < 0 {
				reason = enums.AdjustmentReservationRelease
			}
			if _, err := s.adjuster.Adjust(ctx, tx, rowKey, -delta, reason); err != nil {
				return err
			}
		}

		expiresAt := s.now().UTC().Add(s.ttl)
		if err := repo.UpdateQuantity(ctx, row.ID, input.Quantity, expiresAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update reservation")
		}
		result = &ReservationResult{ReservationID: row.ID, Quantity: input.Quantity, ExpiresAt: &expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// restore hands a released hold back to stock. A variant deleted by the
// catalog since the hold was taken cannot take stock back; the hold is
// dropped regardless.
func (s *service) restore(ctx context.Context, tx *gorm.DB, key inventory.VariantKey, row *models.CartReservation) error {
	_, err := s.adjuster.Adjust(ctx, tx, key, row.Quantity, enums.AdjustmentReservationRelease)
	if err == nil {
		return nil
	}
	if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		s.logg.Warn(s.logg.WithField(ctx, "reservation_id", row.ID.String()), "released reservation references a missing variant")
		return nil
	}
	return err
}

// reap runs the expiry pass. Its failures are logged and never fail the
// triggering request.
func (s *service) reap(ctx context.Context) {
	report, err := s.reaper.CleanupExpired(ctx)
	if err != nil {
		s.logg.Error(ctx, "reservation reaper failed", err)
		return
	}
	if report != nil && len(report.Failures) > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "failed", len(report.Failures)), "reservation reaper left holds for retry")
	}
}

func matchesVariant(row *models.CartReservation, key inventory.VariantKey) error {
	if row.ProductID != key.ProductID || row.Size != key.Size {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation belongs to a different variant").
			WithDetails(map[string]any{"reservation_id": row.ID.String()})
	}
	if key.Color != nil && !inventory.SameColor(row.Color, key.Color) {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation belongs to a different colour").
			WithDetails(map[string]any{"reservation_id": row.ID.String()})
	}
	return nil
}

func reservationNotFound(id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found").
		WithDetails(map[string]any{"reservation_id": id.String()})
}
