package orders

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutiquenoire/storefront-backend/internal/inventory"
	"github.com/boutiquenoire/storefront-backend/pkg/db/models"
	"github.com/boutiquenoire/storefront-backend/pkg/enums"
	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
	"github.com/boutiquenoire/storefront-backend/pkg/logger"
	"github.com/boutiquenoire/storefront-backend/pkg/types"
)

// Service exposes the order operations that touch inventory.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, *SyncReport, error)
	Delete(ctx context.Context, id uuid.UUID) (*SyncReport, error)
}

type service struct {
	repo           Repository
	tx             txRunner
	adjuster       inventory.StockAdjuster
	cart           CartConsumer
	logg           *logger.Logger
	fullStatusSet  bool
	legacyStandard bool
	now            func() time.Time
}

type ServiceParams struct {
	Repo                Repository
	Tx                  txRunner
	Adjuster            inventory.StockAdjuster
	Cart                CartConsumer
	Logger              *logger.Logger
	FullStatusSet       bool
	LegacyStandardColor bool
	Now                 func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("orders repository required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Adjuster == nil {
		return nil, errors.New("inventory adjuster required")
	}
	if params.Cart == nil {
		return nil, errors.New("cart consumer required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:           params.Repo,
		tx:             params.Tx,
		adjuster:       params.Adjuster,
		cart:           params.Cart,
		logg:           params.Logger,
		fullStatusSet:  params.FullStatusSet,
		legacyStandard: params.LegacyStandardColor,
		now:            now,
	}, nil
}

// Create writes a pending order from the cart's holds. The holds are consumed
// in the same transaction so the stock they took stays deducted for the order.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	ctx = s.logg.WithCartID(ctx, input.CartID)

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		holds, err := s.cart.ConsumeCart(ctx, tx, input.CartID)
		if err != nil {
			return err
		}
		if len(holds) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart has no active reservations").
				WithDetails(map[string]any{"cart_id": input.CartID})
		}

		repo := s.repo.WithTx(tx)
		items := itemsFromHolds(holds)
		names, err := repo.ProductNames(ctx, productIDs(items))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product names")
		}
		for i := range items {
			items[i].Name = names[items[i].ProductID]
		}

		order = &models.Order{
			ID:            uuid.New(),
			CartID:        input.CartID,
			CustomerName:  strings.TrimSpace(input.CustomerName),
			CustomerPhone: strings.TrimSpace(input.CustomerPhone),
			Status:        enums.OrderStatusPending,
			Notes:         input.Notes,
			Items:         items,
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"units":    order.Items.TotalQuantity(),
	}), "order created")
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, orderNotFound(id)
	}
	return order, nil
}

// UpdateStatus moves an order to a new status and reconciles stock. Line
// failures are reported but never block the status write.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, *SyncReport, error) {
	next, err := s.parseStatus(input.Status)
	if err != nil {
		return nil, nil, err
	}
	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())

	var (
		updated *models.Order
		report  *SyncReport
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order == nil {
			return orderNotFound(input.OrderID)
		}

		action, reason := planStatusSync(order.Status, next, order.InventoryRestored)
		if action != SyncNone {
			restored := action == SyncRestore
			claimed, err := repo.ClaimInventoryRestored(ctx, order.ID, !restored, restored)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim inventory flag")
			}
			if !claimed {
				return pkgerrors.New(pkgerrors.CodeConflict, "order inventory changed concurrently")
			}
		}
		report = s.syncLines(ctx, tx, order, action, reason)

		updates := map[string]any{"status": next}
		if input.Notes != nil {
			updates["notes"] = input.Notes
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
		}
		updated, err = repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if report.HasFailures() {
		s.logg.Warn(s.logg.WithField(ctx, "failed_lines", len(report.Failures)), "order status updated with inventory sync failures")
	}
	return updated, report, nil
}

// Delete removes an order. Stock still held by it is returned first unless
// it was already returned by a cancel or return.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (*SyncReport, error) {
	ctx = s.logg.WithOrderID(ctx, id.String())

	var report *SyncReport
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order == nil {
			return orderNotFound(id)
		}

		report = &SyncReport{Action: SyncNone}
		if order.Status != enums.OrderStatusCancelled && !order.InventoryRestored {
			claimed, err := repo.ClaimInventoryRestored(ctx, order.ID, false, true)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim inventory flag")
			}
			if !claimed {
				return pkgerrors.New(pkgerrors.CodeConflict, "order inventory changed concurrently")
			}
			report = s.syncLines(ctx, tx, order, SyncRestore, enums.AdjustmentOrderDeleted)
		}

		deleted, err := repo.Delete(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
		}
		if !deleted {
			return orderNotFound(id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if report.HasFailures() {
		s.logg.Warn(s.logg.WithField(ctx, "failed_lines", len(report.Failures)), "order deleted with inventory sync failures")
	}
	return report, nil
}

func (s *service) parseStatus(raw string) (enums.OrderStatus, error) {
	status, err := enums.ParseOrderStatus(raw)
	if err != nil || (!s.fullStatusSet && !status.IsLegacy()) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{
				"status":  raw,
				"allowed": enums.OrderStatuses(s.fullStatusSet),
			})
	}
	return status, nil
}

// itemsFromHolds folds holds into one line per variant, ordered by first
// appearance.
func itemsFromHolds(holds []models.CartReservation) types.OrderItems {
	items := make(types.OrderItems, 0, len(holds))
	index := map[string]int{}
	for _, h := range holds {
		key := inventory.VariantKey{ProductID: h.ProductID, Size: h.Size, Color: h.Color}.String()
		if i, ok := index[key]; ok {
			items[i].Quantity += h.Quantity
			continue
		}
		index[key] = len(items)
		items = append(items, types.OrderItem{
			ProductID: h.ProductID,
			Size:      h.Size,
			Color:     h.Color,
			Quantity:  h.Quantity,
		})
	}
	return items
}

func productIDs(items types.OrderItems) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if !slices.Contains(ids, item.ProductID) {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

func orderNotFound(id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithDetails(map[string]any{"order_id": id.String()})
}
