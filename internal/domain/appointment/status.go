package appointment

import (
	"time"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
)

// ===============================
// Validations
// ===============================

// CanCancel rejects cancelled appointments and, unless override is set,
// appointments whose slot has already started.
func CanCancel(ap *models.Appointment, slot *models.TimeSlot, now time.Time, loc *time.Location, override bool) error {
	if ap.IsCancelled {
		return httperr.ErrConflict("already_cancelled", "This appointment is already cancelled.")
	}
	if !override && slot != nil && IsPast(slot, now, loc) {
		return httperr.ErrConflict("appointment_past", "Past appointments cannot be cancelled.")
	}
	return nil
}

func CanReschedule(ap *models.Appointment, slot *models.TimeSlot, now time.Time, loc *time.Location) error {
	if ap.IsCancelled {
		return httperr.ErrConflict("appointment_cancelled", "Cancelled appointments cannot be rescheduled.")
	}
	if slot != nil && IsPast(slot, now, loc) {
		return httperr.ErrConflict("appointment_past", "Past appointments cannot be rescheduled.")
	}
	return nil
}
