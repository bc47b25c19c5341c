package order

import (
	"context"
	"errors"
	"time"

	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	orderdomain "github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/timezone"
)

// Queries serves the read side of orders for all three roles.
type Queries struct {
	repo  domain.Repository
	loc   *time.Location
	clock timezone.Clock
}

func NewQueries(repo domain.Repository, loc *time.Location, clock timezone.Clock) *Queries {
	if clock == nil {
		clock = timezone.System
	}
	return &Queries{repo: repo, loc: loc, clock: clock}
}

// ======================================================
// CLIENT
// ======================================================

func (q *Queries) ClientOrders(ctx context.Context, p auth.Principal) ([]models.WashOrder, error) {
	if !p.IsClient() {
		return nil, errClientOnly
	}
	return q.repo.ListOrders(ctx, domain.OrderFilter{ClientID: &p.ID})
}

type OrderDetail struct {
	Order       *models.WashOrder   `json:"order"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
}

// Detail returns an order visible to p together with the appointment that
// produced it, if any.
func (q *Queries) Detail(ctx context.Context, p auth.Principal, orderID uint) (*OrderDetail, error) {
	o, err := q.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, orNotFound(err, errOrderNotFound)
	}

	switch {
	case p.IsAdmin():
	case p.IsClient() && o.ClientID == p.ID:
	case p.IsWasher() && o.WasherID != nil && *o.WasherID == p.ID:
	default:
		return nil, errOrderNotFound
	}

	ap, err := q.repo.FindAppointmentByOrder(ctx, o.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return &OrderDetail{Order: o, Appointment: ap}, nil
}

// ======================================================
// WASHER
// ======================================================

func (q *Queries) WasherCurrent(ctx context.Context, p auth.Principal) ([]models.WashOrder, error) {
	if !p.IsWasher() {
		return nil, errWasherOnly
	}
	return q.repo.ListOrders(ctx, domain.OrderFilter{
		WasherID: &p.ID,
		Statuses: orderdomain.Strings(orderdomain.ActiveStatuses),
	})
}

type CompletedOrder struct {
	models.WashOrder
	Review *models.Review `json:"review,omitempty"`
}

func (q *Queries) WasherCompleted(ctx context.Context, p auth.Principal) ([]CompletedOrder, error) {
	if !p.IsWasher() {
		return nil, errWasherOnly
	}

	orders, err := q.repo.ListOrders(ctx, domain.OrderFilter{
		WasherID: &p.ID,
		Statuses: []string{string(orderdomain.StatusCompleted)},
	})
	if err != nil {
		return nil, err
	}
	reviews, err := q.repo.ListReviews(ctx, domain.ReviewFilter{WasherID: &p.ID})
	if err != nil {
		return nil, err
	}

	byOrder := make(map[uint]*models.Review, len(reviews))
	for i := range reviews {
		byOrder[reviews[i].WashOrderID] = &reviews[i]
	}

	out := make([]CompletedOrder, len(orders))
	for i, o := range orders {
		out[i] = CompletedOrder{WashOrder: o, Review: byOrder[o.ID]}
	}
	return out, nil
}

// ======================================================
// ADMIN
// ======================================================

const (
	PeriodAll   = ""
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// AdminOrders lists all orders, optionally narrowed to one status and to a
// period counted back from the start of today in the business timezone.
func (q *Queries) AdminOrders(ctx context.Context, p auth.Principal, status, period string) ([]models.WashOrder, error) {
	if !p.IsAdmin() {
		return nil, errAdminOnly
	}

	var f domain.OrderFilter
	if status != "" {
		if !orderdomain.Status(status).Valid() {
			return nil, httperr.ErrValidation("invalid_status", "Unknown order status.")
		}
		f.Statuses = []string{status}
	}

	today := timezone.StartOfDay(q.clock(), q.loc)
	var since time.Time
	switch period {
	case PeriodAll:
	case PeriodToday:
		since = today
	case PeriodWeek:
		since = today.AddDate(0, 0, -7)
	case PeriodMonth:
		since = today.AddDate(0, 0, -30)
	default:
		return nil, httperr.ErrValidation("invalid_period", "Period must be one of today, week, month.")
	}
	if !since.IsZero() {
		s := since.UTC()
		f.Since = &s
	}

	return q.repo.ListOrders(ctx, f)
}
