package order

import (
	"errors"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/httperr"
)

var (
	errOrderNotFound   = httperr.ErrNotFound("order_not_found", "Order not found.")
	errWasherNotFound  = httperr.ErrNotFound("washer_not_found", "Washer not found.")
	errVehicleNotFound = httperr.ErrNotFound("vehicle_not_found", "Vehicle not found.")
	errAdminOnly       = httperr.ErrForbidden("forbidden", "Only administrators can perform this action.")
	errClientOnly      = httperr.ErrForbidden("forbidden", "Only clients can perform this action.")
	errWasherOnly      = httperr.ErrForbidden("forbidden", "Only washers can perform this action.")
)

// orNotFound maps a missing record to nf and passes other errors through.
func orNotFound(err, nf error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nf
	}
	return err
}
