package orders

import (
	"strings"

	"github.com/google/uuid"

	"github.com/boutiquenoire/storefront-backend/pkg/db/models"
	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
)

// CreateOrderInput turns a cart's live holds into a pending order awaiting
// phone confirmation.
type CreateOrderInput struct {
	CartID        string
	CustomerName  string
	CustomerPhone string
	Notes         *string
}

func (in CreateOrderInput) validate() error {
	missing := []string{}
	if strings.TrimSpace(in.CartID) == "" {
		missing = append(missing, "cart_id")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		missing = append(missing, "customer_name")
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		missing = append(missing, "customer_phone")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}
	return nil
}

// UpdateStatusInput moves an order to Status. Notes is written only when set.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  string
	Notes   *string
}

// OrderWithSync is the admin response for a status change. InventorySync is
// present only when some line failed to adjust.
type OrderWithSync struct {
	*models.Order
	InventorySync *SyncReport `json:"inventory_sync,omitempty"`
}
