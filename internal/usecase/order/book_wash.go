package order

import (
	"context"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	orderdomain "github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type BookWashInput struct {
	VehicleID uint
	WashType  string
	Notes     string
}

// ======================================================
// USE CASE
// ======================================================

// BookWash creates an order for one of the client's vehicles and hands it to
// a free washer straight away when there is one.
type BookWash struct {
	repo   domain.Repository
	engine *assignment.Engine
	prices orderdomain.PriceList
	audit  *audit.Dispatcher
}

func NewBookWash(
	repo domain.Repository,
	engine *assignment.Engine,
	prices orderdomain.PriceList,
	audit *audit.Dispatcher,
) *BookWash {
	return &BookWash{
		repo:   repo,
		engine: engine,
		prices: prices,
		audit:  audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookWash) Execute(
	ctx context.Context,
	p auth.Principal,
	in BookWashInput,
) (*models.WashOrder, error) {

	if !p.IsClient() {
		return nil, errClientOnly
	}

	wt, err := orderdomain.ParseWashType(in.WashType)
	if err != nil {
		return nil, err
	}

	var (
		o      *models.WashOrder
		picked bool
	)

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		v, err := tx.GetVehicle(ctx, in.VehicleID)
		if err != nil {
			return orNotFound(err, errVehicleNotFound)
		}
		if v.ClientID != p.ID {
			return errVehicleNotFound
		}

		o = orderdomain.New(p.ID, v.ID, wt, uc.prices, in.Notes, uc.engine.Now())

		picked, err = uc.engine.PickFor(ctx, tx, o)
		if err != nil {
			return err
		}

		if picked {
			err := tx.Transaction(ctx, func(sp domain.Repository) error {
				return sp.CreateOrder(ctx, o)
			})
			if err == nil {
				return nil
			}
			if !httperr.IsBusiness(err, "washer_busy") {
				return err
			}
			// lost the washer to a concurrent booking; queue instead
			orderdomain.Unassign(o)
			o.ID = 0
			picked = false
		}

		return tx.CreateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	m := uc.engine.Metrics()
	m.ObserveTransition(o.Status)
	if picked {
		m.ObserveAssignments(assignment.SourceDirect, 1)
		uc.engine.Notify(ctx, o)
	}

	uc.audit.Dispatch(audit.For(p, "order_created", "wash_order", o.ID, map[string]any{
		"wash_type": o.WashType,
		"status":    o.Status,
	}))

	return o, nil
}
