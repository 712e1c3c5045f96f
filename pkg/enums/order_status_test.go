package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	cases := map[string]OrderStatus{
		"pending":            OrderStatusPending,
		" Cancelled ":        OrderStatusCancelled,
		"IN_DELIVERY":        OrderStatusInDelivery,
		"confirmed_delivery": OrderStatusConfirmedDelivery,
	}
	for input, want := range cases {
		got, err := ParseOrderStatus(input)
		if err != nil {
			t.Fatalf("ParseOrderStatus(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseOrderStatus(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestOrderStatusSets(t *testing.T) {
	if len(OrderStatuses(true)) != 9 {
		t.Fatalf("expected 9 statuses in the full set")
	}
	legacy := OrderStatuses(false)
	if len(legacy) != 6 {
		t.Fatalf("expected 6 legacy statuses, got %d", len(legacy))
	}
	for _, s := range []OrderStatus{OrderStatusPreparing, OrderStatusInDelivery, OrderStatusDeliveryFailed} {
		if s.IsLegacy() {
			t.Fatalf("%s should not be in the legacy set", s)
		}
		if !s.IsValid() {
			t.Fatalf("%s should be valid", s)
		}
	}

	legacy[0] = "mutated"
	if OrderStatuses(false)[0] != OrderStatusPending {
		t.Fatal("OrderStatuses must return a copy")
	}
}

func TestOrderStatusIsRestocked(t *testing.T) {
	if !OrderStatusCancelled.IsRestocked() || !OrderStatusReturned.IsRestocked() {
		t.Fatal("cancelled and returned hold restocked inventory")
	}
	if OrderStatusDelivered.IsRestocked() {
		t.Fatal("delivered does not restock")
	}
}
