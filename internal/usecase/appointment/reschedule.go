package appointment

import (
	"context"
	"time"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	apdomain "github.com/Horridhunk/carmannagement/internal/domain/appointment"
	"github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/timezone"
)

type Reschedule struct {
	repo  domain.Repository
	loc   *time.Location
	clock timezone.Clock
	audit *audit.Dispatcher
}

func NewReschedule(
	repo domain.Repository,
	loc *time.Location,
	clock timezone.Clock,
	audit *audit.Dispatcher,
) *Reschedule {
	if clock == nil {
		clock = timezone.System
	}
	return &Reschedule{repo: repo, loc: loc, clock: clock, audit: audit}
}

// Execute moves the appointment to another bookable slot.
func (uc *Reschedule) Execute(
	ctx context.Context,
	p auth.Principal,
	appointmentID uint,
	slotID uint,
) (*models.Appointment, error) {

	now := uc.clock()
	var (
		ap   *models.Appointment
		from uint
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			return orNotFound(err, errAppointmentNotFound)
		}
		if !p.IsAdmin() && !(p.IsClient() && ap.ClientID == p.ID) {
			return errAppointmentNotFound
		}

		if err := apdomain.CanReschedule(ap, ap.TimeSlot, now, uc.loc); err != nil {
			return err
		}
		if ap.WashOrder != nil {
			s := order.Status(ap.WashOrder.Status)
			if s == order.StatusInProgress || s == order.StatusCompleted {
				return httperr.ErrConflict(
					"order_started",
					"This wash has already started and cannot be rescheduled.",
				)
			}
		}
		if ap.TimeSlotID == slotID {
			return httperr.ErrValidation("same_slot", "The appointment is already booked for this time slot.")
		}

		slot, err := tx.LockTimeSlot(ctx, slotID)
		if err != nil {
			return orNotFound(err, errSlotNotFound)
		}
		counts, err := tx.CountBookings(ctx, []uint{slot.ID})
		if err != nil {
			return err
		}
		if err := apdomain.CanBook(slot, counts[slot.ID], now, uc.loc); err != nil {
			return err
		}

		from = ap.TimeSlotID
		ap.TimeSlotID = slot.ID
		ap.TimeSlot = slot
		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.For(p, "appointment_rescheduled", "appointment", ap.ID, map[string]any{
		"from_slot": from,
		"to_slot":   slotID,
	}))

	return ap, nil
}
