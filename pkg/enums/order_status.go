package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks the storefront order lifecycle.
type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "pending"
	OrderStatusConfirmed         OrderStatus = "confirmed"
	OrderStatusPreparing         OrderStatus = "preparing"
	OrderStatusInDelivery        OrderStatus = "in_delivery"
	OrderStatusDelivered         OrderStatus = "delivered"
	OrderStatusDeliveryFailed    OrderStatus = "delivery_failed"
	OrderStatusCancelled         OrderStatus = "cancelled"
	OrderStatusReturned          OrderStatus = "returned"
	OrderStatusConfirmedDelivery OrderStatus = "confirmed_delivery"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusInDelivery,
	OrderStatusDelivered,
	OrderStatusDeliveryFailed,
	OrderStatusCancelled,
	OrderStatusReturned,
	OrderStatusConfirmedDelivery,
}

// legacyOrderStatuses is the subset accepted by the per-order admin route
// before the intermediate delivery states were introduced.
var legacyOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
	OrderStatusConfirmedDelivery,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	return containsStatus(validOrderStatuses, s)
}

// IsLegacy reports whether the value belongs to the legacy subset.
func (s OrderStatus) IsLegacy() bool {
	return containsStatus(legacyOrderStatuses, s)
}

// IsRestocked reports whether stock for an order in this status has been
// handed back to inventory.
func (s OrderStatus) IsRestocked() bool {
	return s == OrderStatusCancelled || s == OrderStatusReturned
}

// OrderStatuses returns the full enumeration, or the legacy subset when full is false.
func OrderStatuses(full bool) []OrderStatus {
	src := legacyOrderStatuses
	if full {
		src = validOrderStatuses
	}
	out := make([]OrderStatus, len(src))
	copy(out, src)
	return out
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := OrderStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

func containsStatus(set []OrderStatus, s OrderStatus) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}
