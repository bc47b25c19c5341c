package order

import (
	"context"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	orderdomain "github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/models"
)

// ======================================================
// START
// ======================================================

type StartWash struct {
	repo   domain.Repository
	engine *assignment.Engine
	audit  *audit.Dispatcher
}

func NewStartWash(repo domain.Repository, engine *assignment.Engine, audit *audit.Dispatcher) *StartWash {
	return &StartWash{repo: repo, engine: engine, audit: audit}
}

func (uc *StartWash) Execute(ctx context.Context, p auth.Principal, orderID uint) (*models.WashOrder, error) {
	if !p.IsWasher() {
		return nil, errWasherOnly
	}

	var o *models.WashOrder
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		o, err = tx.LockOrder(ctx, orderID)
		if err != nil {
			return orNotFound(err, errOrderNotFound)
		}
		if err := orderdomain.Start(o, p.ID, uc.engine.Now()); err != nil {
			return err
		}
		return tx.UpdateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	uc.engine.Metrics().ObserveTransition(o.Status)
	uc.audit.Dispatch(audit.For(p, "order_started", "wash_order", o.ID, nil))
	return o, nil
}

// ======================================================
// COMPLETE
// ======================================================

// CompleteWash finishes an in-progress order and frees its washer. With
// rescan set the queue is backfilled in the same transaction.
type CompleteWash struct {
	repo   domain.Repository
	engine *assignment.Engine
	rescan bool
	audit  *audit.Dispatcher
}

func NewCompleteWash(
	repo domain.Repository,
	engine *assignment.Engine,
	rescan bool,
	audit *audit.Dispatcher,
) *CompleteWash {
	return &CompleteWash{repo: repo, engine: engine, rescan: rescan, audit: audit}
}

func (uc *CompleteWash) Execute(ctx context.Context, p auth.Principal, orderID uint) (*models.WashOrder, []*models.WashOrder, error) {
	if !p.IsWasher() {
		return nil, nil, errWasherOnly
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
		if err := orderdomain.Complete(o, p.ID, uc.engine.Now()); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if err := markAvailable(ctx, tx, p.ID); err != nil {
			return err
		}

		if !uc.rescan {
			return nil
		}
		backfilled, err = uc.engine.Scan(ctx, tx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	uc.engine.Metrics().ObserveTransition(o.Status)
	uc.engine.Notify(ctx, backfilled...)

	uc.audit.Dispatch(audit.For(p, "order_completed", "wash_order", o.ID, map[string]any{
		"backfilled": len(backfilled),
	}))
	return o, backfilled, nil
}
