package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestInventoryMetricsRecordsAdjustments(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)

	m.ObserveAdjustment("reservation_hold", AdjustApplied, -4)
	m.ObserveAdjustment("reservation_hold", AdjustApplied, -3)
	m.ObserveAdjustment("reservation_release", AdjustApplied, 7)
	m.ObserveAdjustment("reservation_hold", AdjustInsufficientStock, -9)
	m.ObserveReap(ReapRestored)
	m.ObserveReap(ReapOrphaned)
	m.ObserveLockWait(20 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"storefront_inventory_adjustments_total", map[string]string{"reason": "reservation_hold", "result": AdjustApplied}, 2},
		{"storefront_inventory_adjustments_total", map[string]string{"reason": "reservation_hold", "result": AdjustInsufficientStock}, 1},
		{"storefront_inventory_adjusted_units_total", map[string]string{"reason": "reservation_hold", "direction": "out"}, 7},
		{"storefront_inventory_adjusted_units_total", map[string]string{"reason": "reservation_release", "direction": "in"}, 7},
		{"storefront_reservations_reaped_total", map[string]string{"outcome": ReapRestored}, 1},
		{"storefront_reservations_reaped_total", map[string]string{"outcome": ReapOrphaned}, 1},
	}
	for _, tc := range checks {
		got, err := fetchCounterValue(mfs, tc.name, tc.labels)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s %v = %f, want %f", tc.name, tc.labels, got, tc.want)
		}
	}

	mf := findMetricFamily(mfs, "storefront_inventory_product_lock_wait_seconds")
	if mf == nil || mf.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("expected one lock wait sample")
	}
}

func TestInventoryMetricsNoop(t *testing.T) {
	var m *InventoryMetrics
	m.ObserveAdjustment("x", AdjustApplied, 1)
	m.ObserveReap(ReapFailed)
	m.ObserveLockWait(time.Second)

	NewInventoryMetrics(nil).ObserveAdjustment("x", AdjustApplied, 1)
}
