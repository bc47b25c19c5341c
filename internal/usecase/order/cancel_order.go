package order

import (
	"context"
	"time"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	orderdomain "github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/models"
)

type CancelOrder struct {
	repo   domain.Repository
	engine *assignment.Engine
	audit  *audit.Dispatcher
}

func NewCancelOrder(
	repo domain.Repository,
	engine *assignment.Engine,
	audit *audit.Dispatcher,
) *CancelOrder {
	return &CancelOrder{
		repo:   repo,
		engine: engine,
		audit:  audit,
	}
}

// DefaultReason is recorded when the actor gives none.
func DefaultReason(p auth.Principal) string {
	if p.IsAdmin() {
		return "Cancelled by admin"
	}
	return "Cancelled by client"
}

// Execute cancels an order on behalf of its client or an admin. A washer held
// by the order is released and pending orders are backfilled in the same
// transaction.
func (uc *CancelOrder) Execute(
	ctx context.Context,
	p auth.Principal,
	orderID uint,
	reason string,
) (*models.WashOrder, []*models.WashOrder, error) {

	if !p.IsAdmin() && !p.IsClient() {
		return nil, nil, errAdminOnly
	}
	if reason == "" {
		reason = DefaultReason(p)
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
		if p.IsClient() && o.ClientID != p.ID {
			return errOrderNotFound
		}

		backfilled, err = CancelInTx(ctx, tx, uc.engine, o, reason, uc.engine.Now())
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	uc.engine.Metrics().ObserveTransition(o.Status)
	uc.engine.Notify(ctx, backfilled...)

	uc.audit.Dispatch(audit.For(p, "order_cancelled", "wash_order", o.ID, map[string]any{
		"reason":     reason,
		"backfilled": len(backfilled),
	}))

	return o, backfilled, nil
}

// CancelInTx cancels o on tx, marks a released washer available again and
// rescans the queue. The returned orders still need notifying after commit.
func CancelInTx(
	ctx context.Context,
	tx domain.Repository,
	engine *assignment.Engine,
	o *models.WashOrder,
	reason string,
	now time.Time,
) ([]*models.WashOrder, error) {

	freed, err := orderdomain.Cancel(o, reason, now)
	if err != nil {
		return nil, err
	}
	if err := tx.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}

	if freed == nil {
		return nil, nil
	}

	if err := markAvailable(ctx, tx, *freed); err != nil {
		return nil, err
	}
	return engine.Scan(ctx, tx)
}

// markAvailable flags a washer available. A washer deleted in the meantime
// is ignored.
func markAvailable(ctx context.Context, tx domain.Repository, washerID uint) error {
	w, err := tx.GetWasher(ctx, washerID)
	if err != nil {
		return orNotFound(err, nil)
	}
	if w.IsAvailable {
		return nil
	}
	w.IsAvailable = true
	return tx.UpdateWasher(ctx, w)
}
