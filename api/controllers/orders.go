package controllers

import (
	"net/http"

	"github.com/boutiquenoire/storefront-backend/api/responses"
	"github.com/boutiquenoire/storefront-backend/api/validators"
	"github.com/boutiquenoire/storefront-backend/internal/orders"
	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
	"github.com/boutiquenoire/storefront-backend/pkg/logger"
)

type createOrderRequest struct {
	CartID        string  `json:"cart_id" validate:"required,max=128"`
	CustomerName  string  `json:"customer_name" validate:"required,max=120"`
	CustomerPhone string  `json:"customer_phone" validate:"required,max=32"`
	Notes         *string `json:"notes" validate:"omitempty,max=1000"`
}

type updateStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

// CreateOrder checks out a cart: its holds become a pending order.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), orders.CreateOrderInput{
			CartID:        validators.SanitizeString(body.CartID, maxCartIDLen),
			CustomerName:  validators.SanitizeString(body.CustomerName, 120),
			CustomerPhone: validators.SanitizeString(body.CustomerPhone, 32),
			Notes:         body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, order)
	}
}

func AdminGetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, order)
	}
}

// AdminUpdateOrderStatus writes the new status and reconciles stock. The
// updated row is returned with inventory_sync only when a line failed.
func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, report, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID: id,
			Status:  body.Status,
			Notes:   body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := orders.OrderWithSync{Order: order}
		if report.HasFailures() {
			out.InventorySync = report
		}
		responses.WriteJSON(w, http.StatusOK, out)
	}
}

func AdminDeleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload := map[string]any{"deleted": true}
		if report.HasFailures() {
			payload["inventory_sync"] = report
		}
		responses.WriteJSON(w, http.StatusOK, payload)
	}
}
