package enums

// AdjustmentReason labels why a variant quantity moved. It is carried into
// logs and the inventory adjustment metric.
type AdjustmentReason string

const (
	AdjustmentReservationHold    AdjustmentReason = "reservation_hold"
	AdjustmentReservationRelease AdjustmentReason = "reservation_release"
	AdjustmentReservationExpired AdjustmentReason = "reservation_expired"
	AdjustmentOrderCancelled     AdjustmentReason = "order_cancelled"
	AdjustmentOrderReturned      AdjustmentReason = "order_returned"
	AdjustmentOrderReopened      AdjustmentReason = "order_reopened"
	AdjustmentOrderDeleted       AdjustmentReason = "order_deleted"
)

// String implements fmt.Stringer.
func (r AdjustmentReason) String() string {
	if r == "" {
		return "unspecified"
	}
	return string(r)
}
