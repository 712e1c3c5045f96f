package reservations

import (
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
)

// ReserveInput creates a hold when ReservationID is nil and otherwise sets
// the held quantity of an existing one. A non-positive update quantity
// releases the hold.
type ReserveInput struct {
	CartID        string
	ProductID     uuid.UUID
	Size          string
	Color         *string
	Quantity      int
	ReservationID *uuid.UUID
}

// ReservationResult is the wire shape returned to the cart. ExpiresAt is nil
// once the hold is released.
type ReservationResult struct {
	ReservationID uuid.UUID  `json:"reservation_id"`
	Quantity      int        `json:"quantity"`
	ExpiresAt     *time.Time `json:"expires_at"`
	Created       bool       `json:"-"`
}

func (in ReserveInput) validate() error {
	if strings.TrimSpace(in.CartID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart_id is required")
	}
	if in.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if strings.TrimSpace(in.Size) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if in.ReservationID == nil && in.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero").
			WithDetails(map[string]any{"quantity": in.Quantity})
	}
	return nil
}

func released(id uuid.UUID) *ReservationResult {
	return &ReservationResult{ReservationID: id, Quantity: 0}
}
