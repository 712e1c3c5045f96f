package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "storefront"

	resultSuccess = "success"
	resultFailure = "failure"
)

// Adjustment results.
const (
	AdjustApplied           = "applied"
	AdjustInsufficientStock = "insufficient_stock"
	AdjustNotFound          = "not_found"
	AdjustError             = "error"
)

// Reaper outcomes.
const (
	ReapRestored = "restored"
	ReapOrphaned = "orphaned"
	ReapSkipped  = "skipped"
	ReapFailed   = "failed"
)

// InventoryMetrics tracks stock movement, hold expiry and product lock waits.
type InventoryMetrics struct {
	adjustments *prometheus.CounterVec
	units       *prometheus.CounterVec
	reaped      *prometheus.CounterVec
	lockWait    prometheus.Histogram
}

// NewInventoryMetrics registers the inventory collectors. A nil registerer
// yields a no-op recorder.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "adjustments_total",
		Help:      "Variant quantity adjustments by reason and result.",
	}, []string{"reason", "result"})
	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "adjusted_units_total",
		Help:      "Absolute units moved by applied adjustments.",
	}, []string{"reason", "direction"})
	reaped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reservations",
		Name:      "reaped_total",
		Help:      "Expired reservations processed by the reaper, by outcome.",
	}, []string{"outcome"})
	lockWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "product_lock_wait_seconds",
		Help:      "Time spent acquiring the per-product lock.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	})
	reg.MustRegister(adjustments, units, reaped, lockWait)
	return &InventoryMetrics{
		adjustments: adjustments,
		units:       units,
		reaped:      reaped,
		lockWait:    lockWait,
	}
}

// ObserveAdjustment records one adjustment attempt.
func (m *InventoryMetrics) ObserveAdjustment(reason, result string, delta int) {
	if m == nil || m.adjustments == nil {
		return
	}
	m.adjustments.WithLabelValues(normalizeLabel(reason), normalizeLabel(result)).Inc()
	if result != AdjustApplied || delta == 0 {
		return
	}
	direction := "in"
	if delta < 0 {
		direction = "out"
		delta = -delta
	}
	m.units.WithLabelValues(normalizeLabel(reason), direction).Add(float64(delta))
}

// ObserveReap records the outcome of one expired reservation.
func (m *InventoryMetrics) ObserveReap(outcome string) {
	if m == nil || m.reaped == nil {
		return
	}
	m.reaped.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveLockWait records how long a product lock took to acquire.
func (m *InventoryMetrics) ObserveLockWait(d time.Duration) {
	if m == nil || m.lockWait == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}
