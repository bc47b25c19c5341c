package appointment

import (
	"context"
	"time"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	apdomain "github.com/Horridhunk/carmannagement/internal/domain/appointment"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	"github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
	orderuc "github.com/Horridhunk/carmannagement/internal/usecase/order"
)

// CancelAppointment cancels an appointment and cascades to its order. A
// washer held by that order is released and the queue backfilled in the
// same transaction.
type CancelAppointment struct {
	repo   domain.Repository
	engine *assignment.Engine
	loc    *time.Location
	audit  *audit.Dispatcher
}

func NewCancelAppointment(
	repo domain.Repository,
	engine *assignment.Engine,
	loc *time.Location,
	audit *audit.Dispatcher,
) *CancelAppointment {
	return &CancelAppointment{
		repo:   repo,
		engine: engine,
		loc:    loc,
		audit:  audit,
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	p auth.Principal,
	appointmentID uint,
	reason string,
) (*models.Appointment, error) {

	if !p.IsAdmin() && !p.IsClient() {
		return nil, errAdminOnly
	}
	if reason == "" {
		reason = orderuc.DefaultReason(p)
	}

	now := uc.engine.Now()
	var (
		ap         *models.Appointment
		backfilled []*models.WashOrder
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			return orNotFound(err, errAppointmentNotFound)
		}
		if p.IsClient() && ap.ClientID != p.ID {
			return errAppointmentNotFound
		}

		if err := apdomain.CanCancel(ap, ap.TimeSlot, now, uc.loc, p.IsAdmin()); err != nil {
			return err
		}

		if ap.WashOrderID != nil {
			o, err := tx.LockOrder(ctx, *ap.WashOrderID)
			if err != nil {
				return err
			}
			switch order.Status(o.Status) {
			case order.StatusCompleted:
				return httperr.ErrConflict(
					"order_completed",
					"This appointment's wash is already completed and cannot be cancelled.",
				)
			case order.StatusCancelled:
			default:
				backfilled, err = orderuc.CancelInTx(ctx, tx, uc.engine, o, reason, now)
				if err != nil {
					return err
				}
			}
			ap.WashOrder = o
		}

		apdomain.Cancel(ap, reason, now)
		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	uc.engine.Notify(ctx, backfilled...)

	uc.audit.Dispatch(audit.For(p, "appointment_cancelled", "appointment", ap.ID, map[string]any{
		"reason":     reason,
		"backfilled": len(backfilled),
	}))

	return ap, nil
}
