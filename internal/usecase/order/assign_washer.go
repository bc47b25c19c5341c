package order

import (
	"context"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/account"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	orderdomain "github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
)

// AssignWasher lets an admin hand an order to a specific washer. Reassigning
// an assigned order releases the previous washer and backfills the queue.
type AssignWasher struct {
	repo   domain.Repository
	engine *assignment.Engine
	audit  *audit.Dispatcher
}

func NewAssignWasher(
	repo domain.Repository,
	engine *assignment.Engine,
	audit *audit.Dispatcher,
) *AssignWasher {
	return &AssignWasher{
		repo:   repo,
		engine: engine,
		audit:  audit,
	}
}

func (uc *AssignWasher) Execute(
	ctx context.Context,
	p auth.Principal,
	orderID uint,
	washerID uint,
) (*models.WashOrder, error) {

	if !p.IsAdmin() {
		return nil, errAdminOnly
	}

	var (
		o          *models.WashOrder
		backfilled []*models.WashOrder
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		o, err = tx.LockOrder(ctx, orderID)
		if err != nil {
			return orNotFound(err, errOrderNotFound)
		}
		if err := orderdomain.CanAssign(orderdomain.Status(o.Status)); err != nil {
			return err
		}

		w, err := tx.GetWasher(ctx, washerID)
		if err != nil {
			return orNotFound(err, errWasherNotFound)
		}
		if !account.Eligible(w) {
			return httperr.ErrValidation("washer_unavailable", "This washer is not available for assignments.")
		}

		busy, err := tx.WasherBusy(ctx, w.ID, o.ID)
		if err != nil {
			return err
		}
		if busy {
			return httperr.ErrValidation(
				"washer_busy",
				"This washer already has an active order. A washer can only handle one order at a time.",
			)
		}

		previous, err := orderdomain.Assign(o, w.ID, uc.engine.Now())
		if err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}

		if previous == nil {
			return nil
		}
		if err := markAvailable(ctx, tx, *previous); err != nil {
			return err
		}
		backfilled, err = uc.engine.Scan(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	m := uc.engine.Metrics()
	m.ObserveAssignments(assignment.SourceAdmin, 1)
	m.ObserveTransition(o.Status)
	uc.engine.Notify(ctx, append([]*models.WashOrder{o}, backfilled...)...)

	uc.audit.Dispatch(audit.For(p, "order_assigned", "wash_order", o.ID, map[string]any{
		"washer_id":  washerID,
		"backfilled": len(backfilled),
	}))

	return o, nil
}
