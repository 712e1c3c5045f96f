package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/boutiquenoire/storefront-backend/api/responses"
	"github.com/boutiquenoire/storefront-backend/api/validators"
	"github.com/boutiquenoire/storefront-backend/internal/reservations"
	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
	"github.com/boutiquenoire/storefront-backend/pkg/logger"
)

const maxCartIDLen = 128

type reserveRequest struct {
	CartID        string     `json:"cart_id" validate:"required,max=128"`
	ProductID     uuid.UUID  `json:"product_id" validate:"required"`
	Size          string     `json:"size" validate:"required,max=32"`
	Color         *string    `json:"color" validate:"omitempty,max=64"`
	Quantity      *int       `json:"quantity" validate:"required"`
	ReservationID *uuid.UUID `json:"reservation_id"`
}

// Reserve creates, resizes or releases a cart hold. A new hold answers 201;
// updates and releases answer 200.
func Reserve(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		var body reserveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Reserve(r.Context(), reservations.ReserveInput{
			CartID:        validators.SanitizeString(body.CartID, maxCartIDLen),
			ProductID:     body.ProductID,
			Size:          validators.SanitizeString(body.Size, 32),
			Color:         validators.SanitizeOptional(body.Color, 64),
			Quantity:      *body.Quantity,
			ReservationID: body.ReservationID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		responses.WriteJSON(w, status, result)
	}
}

// Release removes a hold owned by the cart in ?cart_id=.
func Release(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cartID, err := validators.RequireQuery(r, "cart_id", maxCartIDLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Release(r.Context(), cartID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}
