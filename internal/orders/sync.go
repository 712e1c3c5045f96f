package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutiquenoire/storefront-backend/internal/inventory"
	"github.com/boutiquenoire/storefront-backend/pkg/db/models"
	"github.com/boutiquenoire/storefront-backend/pkg/enums"
	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
)

// SyncAction describes what a status change does to stock.
type SyncAction string

const (
	SyncNone    SyncAction = "none"
	SyncRestore SyncAction = "restore"
	SyncDeduct  SyncAction = "deduct"
)

// SyncReport summarises one inventory sync over an order's lines.
type SyncReport struct {
	Action   SyncAction    `json:"action"`
	Adjusted int           `json:"adjusted"`
	Failures []LineFailure `json:"failures,omitempty"`
}

// LineFailure is an order line whose stock could not be adjusted.
type LineFailure struct {
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Color     *string   `json:"color,omitempty"`
	Quantity  int       `json:"quantity"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
}

// HasFailures reports whether at least one line was skipped.
func (r *SyncReport) HasFailures() bool {
	return r != nil && len(r.Failures) > 0
}

// planStatusSync decides the stock action for prev -> next given the current
// value of inventory_restored.
//
//	not restocked -> cancelled|returned, restored=false : restore
//	restocked     -> pending,            restored=true  : deduct
//	anything else                                       : none
func planStatusSync(prev, next enums.OrderStatus, restored bool) (SyncAction, enums.AdjustmentReason) {
	switch {
	case next.IsRestocked() && !prev.IsRestocked() && !restored:
		if next == enums.OrderStatusReturned {
			return SyncRestore, enums.AdjustmentOrderReturned
		}
		return SyncRestore, enums.AdjustmentOrderCancelled
	case prev.IsRestocked() && next == enums.OrderStatusPending && restored:
		return SyncDeduct, enums.AdjustmentOrderReopened
	default:
		return SyncNone, ""
	}
}

// syncLines applies the action to every line of order inside tx. Each line
// runs in its own savepoint so a failed line leaves the others applied.
func (s *service) syncLines(ctx context.Context, tx *gorm.DB, order *models.Order, action SyncAction, reason enums.AdjustmentReason) *SyncReport {
	report := &SyncReport{Action: action}
	if action == SyncNone {
		return report
	}
	sign := 1
	if action == SyncDeduct {
		sign = -1
	}

	for _, item := range order.Items {
		key := inventory.NewVariantKey(item.ProductID, item.Size, item.Color, s.legacyStandard)
		if item.Quantity <= 0 {
			continue
		}
		err := tx.Transaction(func(sp *gorm.DB) error {
			_, err := s.adjuster.Adjust(ctx, sp, key, sign*item.Quantity, reason)
			return err
		})
		if err != nil {
			failure := LineFailure{
				ProductID: item.ProductID,
				Size:      item.Size,
				Color:     key.Color,
				Quantity:  item.Quantity,
				Code:      string(pkgerrors.CodeInternal),
				Message:   err.Error(),
			}
			if typed := pkgerrors.As(err); typed != nil {
				failure.Code = string(typed.Code())
				failure.Message = typed.Message()
			}
			report.Failures = append(report.Failures, failure)
			s.logg.Error(s.logg.WithFields(ctx, map[string]any{
				"variant": key.String(),
				"delta":   sign * item.Quantity,
				"reason":  reason.String(),
			}), fmt.Sprintf("order line %s skipped", action), err)
			continue
		}
		report.Adjusted++
	}
	return report
}
