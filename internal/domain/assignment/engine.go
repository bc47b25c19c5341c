// Package assignment matches waiting wash orders to truly available washers:
// oldest order first, one active order per washer, and the scan stops at the
// first order no washer can take.
package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/metrics"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/timezone"
)

// Notifier is told about every assignment once it is committed.
type Notifier interface {
	NotifyAssignment(ctx context.Context, o *models.WashOrder) error
}

const (
	SourceDirect = "direct"
	SourceScan   = "scan"
	SourceAdmin  = "admin"
)

type Engine struct {
	policy   domain.SelectionPolicy
	notifier Notifier
	clock    timezone.Clock
	log      *logrus.Entry
	metrics  *metrics.Metrics
}

func NewEngine(
	policy domain.SelectionPolicy,
	notifier Notifier,
	clock timezone.Clock,
	log *logrus.Entry,
	m *metrics.Metrics,
) *Engine {
	if policy == "" {
		policy = domain.PolicySeniority
	}
	if clock == nil {
		clock = timezone.System
	}
	return &Engine{
		policy:   policy,
		notifier: notifier,
		clock:    clock,
		log:      log,
		metrics:  m,
	}
}

func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

func (e *Engine) Now() time.Time {
	return e.clock()
}

// Scan assigns waiting orders in creation order until no washer is free.
// Each assignment runs in its own (nested) transaction on repo, so a failed
// pick leaves that order waiting without undoing earlier ones. The returned
// orders are assigned but not yet notified; callers that run Scan inside a
// transaction call Notify after committing.
func (e *Engine) Scan(ctx context.Context, repo domain.Repository) ([]*models.WashOrder, error) {
	started := time.Now()
	defer func() { e.metrics.ObserveScan(time.Since(started)) }()

	waiting, err := repo.ListPendingOrders(ctx)
	if err != nil {
		return nil, err
	}

	var assigned []*models.WashOrder
	for i := range waiting {
		o, ok, err := e.assignOne(ctx, repo, waiting[i].ID)
		if httperr.IsBusiness(err, "washer_busy") {
			e.log.WithField("order_id", waiting[i].ID).Warn("washer taken concurrently; leaving order pending")
			break
		}
		if err != nil {
			return assigned, err
		}
		if !ok {
			break
		}
		if o != nil {
			assigned = append(assigned, o)
		}
	}

	e.metrics.ObserveAssignments(SourceScan, len(assigned))
	return assigned, nil
}

// assignOne re-reads the order under lock and gives it to the first free
// washer. ok is false when no washer is free. A nil order with ok means the
// order was no longer waiting and the scan should move on.
func (e *Engine) assignOne(ctx context.Context, repo domain.Repository, orderID uint) (*models.WashOrder, bool, error) {
	var (
		result *models.WashOrder
		free   = true
	)

	err := repo.Transaction(ctx, func(tx domain.Repository) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		if !order.Status(o.Status).IsWaiting() {
			return nil
		}

		w, err := tx.FindFreeWasher(ctx, e.policy)
		if errors.Is(err, domain.ErrNotFound) {
			free = false
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := order.Assign(o, w.ID, e.clock()); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}

		result = o
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, free, nil
}

// PickFor tries to hand a freshly created order to a free washer on repo.
// No free washer leaves the order as it is and reports false.
func (e *Engine) PickFor(ctx context.Context, repo domain.Repository, o *models.WashOrder) (bool, error) {
	w, err := repo.FindFreeWasher(ctx, e.policy)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := order.Assign(o, w.ID, e.clock()); err != nil {
		return false, err
	}
	return true, nil
}

// Notify delivers assignment notices. Failures are logged and swallowed.
func (e *Engine) Notify(ctx context.Context, orders ...*models.WashOrder) {
	if e.notifier == nil {
		return
	}
	for _, o := range orders {
		if o == nil {
			continue
		}
		if err := e.notifier.NotifyAssignment(ctx, o); err != nil {
			e.metrics.ObserveNotifyFailure("assignment")
			e.log.WithError(err).WithField("order_id", o.ID).Warn("assignment notification failed")
		}
	}
}

// AutoAssign runs a standalone scan and notifies the assignments.
func (e *Engine) AutoAssign(ctx context.Context, repo domain.Repository) ([]*models.WashOrder, error) {
	assigned, err := e.Scan(ctx, repo)
	e.Notify(ctx, assigned...)
	return assigned, err
}
