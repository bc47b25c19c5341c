package appointment

import (
	"errors"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/httperr"
)

var (
	errAppointmentNotFound = httperr.ErrNotFound("appointment_not_found", "Appointment not found.")
	errSlotNotFound        = httperr.ErrNotFound("slot_not_found", "Time slot not found.")
	errVehicleNotFound     = httperr.ErrNotFound("vehicle_not_found", "Vehicle not found.")
	errClientOnly          = httperr.ErrForbidden("forbidden", "Only clients can book appointments.")
	errAdminOnly           = httperr.ErrForbidden("forbidden", "Only administrators can perform this action.")
)

func orNotFound(err, nf error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nf
	}
	return err
}
