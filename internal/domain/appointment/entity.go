package appointment

import (
	"time"

	"github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Cancel marks the appointment cancelled. The linked order, if any, is the
// caller's to cancel through the order path.
func Cancel(ap *models.Appointment, reason string, now time.Time) {
	ap.IsCancelled = true
	ap.CancelledAt = &now
	ap.CancellationReason = reason
}

// NewOrder derives the wash order for ap. It does not link it; the caller
// persists the order and stores its id on the appointment.
func NewOrder(ap *models.Appointment, prices order.PriceList, now time.Time) *models.WashOrder {
	return order.New(
		ap.ClientID,
		ap.VehicleID,
		order.WashType(ap.WashType),
		prices,
		ap.SpecialInstructions,
		now,
	)
}
