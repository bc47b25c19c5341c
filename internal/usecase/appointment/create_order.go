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

// CreateWashOrder returns the order linked to an appointment, creating a
// pending one when there is none yet. Repeated calls return the same order.
type CreateWashOrder struct {
	repo   domain.Repository
	prices order.PriceList
	clock  timezone.Clock
	audit  *audit.Dispatcher
}

func NewCreateWashOrder(
	repo domain.Repository,
	prices order.PriceList,
	clock timezone.Clock,
	audit *audit.Dispatcher,
) *CreateWashOrder {
	if clock == nil {
		clock = timezone.System
	}
	return &CreateWashOrder{repo: repo, prices: prices, clock: clock, audit: audit}
}

func (uc *CreateWashOrder) Execute(
	ctx context.Context,
	p auth.Principal,
	appointmentID uint,
) (*models.WashOrder, bool, error) {

	var (
		o       *models.WashOrder
		created bool
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		ap, err := tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			return orNotFound(err, errAppointmentNotFound)
		}
		if !p.IsAdmin() && !(p.IsClient() && ap.ClientID == p.ID) {
			return errAppointmentNotFound
		}

		o, created, err = ensureOrder(ctx, tx, ap, uc.prices, uc.clock())
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		uc.audit.Dispatch(audit.For(p, "order_created", "wash_order", o.ID, map[string]any{
			"appointment_id": appointmentID,
		}))
	}
	return o, created, nil
}

// ensureOrder links a new pending order to ap unless it already has one.
func ensureOrder(
	ctx context.Context,
	tx domain.Repository,
	ap *models.Appointment,
	prices order.PriceList,
	now time.Time,
) (*models.WashOrder, bool, error) {

	if ap.WashOrderID != nil {
		o, err := tx.GetOrder(ctx, *ap.WashOrderID)
		if err != nil {
			return nil, false, err
		}
		return o, false, nil
	}

	if ap.IsCancelled {
		return nil, false, httperr.ErrConflict("appointment_cancelled", "This appointment is cancelled.")
	}

	o := apdomain.NewOrder(ap, prices, now)
	if err := tx.CreateOrder(ctx, o); err != nil {
		return nil, false, err
	}

	ap.WashOrderID = &o.ID
	if err := tx.UpdateAppointment(ctx, ap); err != nil {
		return nil, false, err
	}
	return o, true, nil
}
