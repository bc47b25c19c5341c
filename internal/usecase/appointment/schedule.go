package appointment

import (
	"context"
	"time"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	apdomain "github.com/Horridhunk/carmannagement/internal/domain/appointment"
	"github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/timezone"
)

type ScheduleInput struct {
	VehicleID           uint
	TimeSlotID          uint
	WashType            string
	SpecialInstructions string
}

// Schedule books a time slot for one of the client's vehicles and derives
// the wash order in the same transaction.
type Schedule struct {
	repo   domain.Repository
	prices order.PriceList
	loc    *time.Location
	clock  timezone.Clock
	audit  *audit.Dispatcher
}

func NewSchedule(
	repo domain.Repository,
	prices order.PriceList,
	loc *time.Location,
	clock timezone.Clock,
	audit *audit.Dispatcher,
) *Schedule {
	if clock == nil {
		clock = timezone.System
	}
	return &Schedule{
		repo:   repo,
		prices: prices,
		loc:    loc,
		clock:  clock,
		audit:  audit,
	}
}

func (uc *Schedule) Execute(
	ctx context.Context,
	p auth.Principal,
	in ScheduleInput,
) (*models.Appointment, error) {

	if !p.IsClient() {
		return nil, errClientOnly
	}

	wt, err := order.ParseWashType(in.WashType)
	if err != nil {
		return nil, err
	}

	now := uc.clock()
	var ap *models.Appointment

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		v, err := tx.GetVehicle(ctx, in.VehicleID)
		if err != nil {
			return orNotFound(err, errVehicleNotFound)
		}
		if v.ClientID != p.ID {
			return errVehicleNotFound
		}

		slot, err := tx.LockTimeSlot(ctx, in.TimeSlotID)
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

		ap = &models.Appointment{
			ClientID:            p.ID,
			VehicleID:           v.ID,
			TimeSlotID:          slot.ID,
			WashType:            string(wt),
			SpecialInstructions: in.SpecialInstructions,
			IsConfirmed:         true,
		}
		if err := tx.CreateAppointment(ctx, ap); err != nil {
			return err
		}
		ap.TimeSlot = slot

		_, _, err = ensureOrder(ctx, tx, ap, uc.prices, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.For(p, "appointment_created", "appointment", ap.ID, map[string]any{
		"time_slot_id":  ap.TimeSlotID,
		"wash_order_id": ap.WashOrderID,
	}))

	return ap, nil
}
