package order

import (
	"context"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/account"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	orderdomain "github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/models"
)

// WasherChange is the result of an operation that may have freed capacity.
type WasherChange struct {
	Washer   *models.Washer
	Assigned int
}

// ======================================================
// TOGGLE AVAILABILITY
// ======================================================

// ToggleAvailability flips a washer's availability. A washer may toggle
// themselves; admins may toggle anyone. Becoming eligible triggers a rescan.
type ToggleAvailability struct {
	repo   domain.Repository
	engine *assignment.Engine
	audit  *audit.Dispatcher
}

func NewToggleAvailability(repo domain.Repository, engine *assignment.Engine, audit *audit.Dispatcher) *ToggleAvailability {
	return &ToggleAvailability{repo: repo, engine: engine, audit: audit}
}

func (uc *ToggleAvailability) Execute(ctx context.Context, p auth.Principal, washerID uint) (*WasherChange, error) {
	if !p.IsAdmin() && !(p.IsWasher() && p.ID == washerID) {
		return nil, errWasherNotFound
	}

	res, err := updateWasher(ctx, uc.repo, uc.engine, washerID, func(w *models.Washer) error {
		w.IsAvailable = !w.IsAvailable
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.For(p, "washer_availability_toggled", "washer", washerID, map[string]any{
		"is_available": res.Washer.IsAvailable,
		"assigned":     res.Assigned,
	}))
	return res, nil
}

// ======================================================
// SET STATUS
// ======================================================

type SetWasherStatus struct {
	repo   domain.Repository
	engine *assignment.Engine
	audit  *audit.Dispatcher
}

func NewSetWasherStatus(repo domain.Repository, engine *assignment.Engine, audit *audit.Dispatcher) *SetWasherStatus {
	return &SetWasherStatus{repo: repo, engine: engine, audit: audit}
}

func (uc *SetWasherStatus) Execute(ctx context.Context, p auth.Principal, washerID uint, status string) (*WasherChange, error) {
	if !p.IsAdmin() {
		return nil, errAdminOnly
	}
	if err := account.ValidateWasherStatus(status); err != nil {
		return nil, err
	}

	var from string
	res, err := updateWasher(ctx, uc.repo, uc.engine, washerID, func(w *models.Washer) error {
		from = w.Status
		w.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.For(p, "washer_status_changed", "washer", washerID, map[string]any{
		"from":     from,
		"to":       status,
		"assigned": res.Assigned,
	}))
	return res, nil
}

// updateWasher applies change to the washer and rescans when the washer
// went from ineligible to eligible.
func updateWasher(
	ctx context.Context,
	repo domain.Repository,
	engine *assignment.Engine,
	washerID uint,
	change func(w *models.Washer) error,
) (*WasherChange, error) {

	var (
		w        *models.Washer
		assigned []*models.WashOrder
	)

	err := repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		w, err = tx.GetWasher(ctx, washerID)
		if err != nil {
			return orNotFound(err, errWasherNotFound)
		}

		before := account.Eligible(w)
		if err := change(w); err != nil {
			return err
		}
		if err := tx.UpdateWasher(ctx, w); err != nil {
			return err
		}

		if before || !account.Eligible(w) {
			return nil
		}
		assigned, err = engine.Scan(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	engine.Notify(ctx, assigned...)
	return &WasherChange{Washer: w, Assigned: len(assigned)}, nil
}

// ======================================================
// DELETE
// ======================================================

// DeleteWasher returns the washer's active orders to the queue, removes the
// washer and lets the remaining staff pick the orders up.
type DeleteWasher struct {
	repo   domain.Repository
	engine *assignment.Engine
	audit  *audit.Dispatcher
}

func NewDeleteWasher(repo domain.Repository, engine *assignment.Engine, audit *audit.Dispatcher) *DeleteWasher {
	return &DeleteWasher{repo: repo, engine: engine, audit: audit}
}

func (uc *DeleteWasher) Execute(ctx context.Context, p auth.Principal, washerID uint) (int, error) {
	if !p.IsAdmin() {
		return 0, errAdminOnly
	}

	var (
		requeued int
		assigned []*models.WashOrder
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if _, err := tx.GetWasher(ctx, washerID); err != nil {
			return orNotFound(err, errWasherNotFound)
		}

		active, err := tx.ListOrders(ctx, domain.OrderFilter{
			WasherID: &washerID,
			Statuses: orderdomain.Strings(orderdomain.ActiveStatuses),
		})
		if err != nil {
			return err
		}
		for i := range active {
			orderdomain.Unassign(&active[i])
			if err := tx.UpdateOrder(ctx, &active[i]); err != nil {
				return err
			}
		}
		requeued = len(active)

		if err := tx.DeleteWasher(ctx, washerID); err != nil {
			return orNotFound(err, errWasherNotFound)
		}

		assigned, err = uc.engine.Scan(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}

	uc.engine.Notify(ctx, assigned...)
	uc.audit.Dispatch(audit.For(p, "washer_deleted", "washer", washerID, map[string]any{
		"requeued": requeued,
		"assigned": len(assigned),
	}))
	return requeued, nil
}
