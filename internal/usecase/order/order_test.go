package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	orderdomain "github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/infra/repository"
	"github.com/Horridhunk/carmannagement/internal/logging"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/testutil"
	"github.com/Horridhunk/carmannagement/internal/timezone"
	"github.com/Horridhunk/carmannagement/internal/usecase/order"
)

var (
	base  = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	admin = auth.Principal{Role: auth.RoleAdmin, ID: 1}
)

type notifier struct{ ids []uint }

func (n *notifier) NotifyAssignment(_ context.Context, o *models.WashOrder) error {
	n.ids = append(n.ids, o.ID)
	return nil
}

type env struct {
	repo   *repository.GormRepository
	fx     *testutil.Fixtures
	engine *assignment.Engine
	notes  *notifier
	cl     *models.Client
	veh    *models.Vehicle
}

func setup(t *testing.T) *env {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	n := &notifier{}
	cl := fx.Client()
	return &env{
		repo:   repository.NewGormRepository(db),
		fx:     fx,
		engine: assignment.NewEngine(domain.PolicySeniority, n, timezone.Fixed(base.Add(time.Hour)), logging.Discard(), nil),
		notes:  n,
		cl:     cl,
		veh:    fx.Vehicle(cl.ID),
	}
}

func (e *env) client() auth.Principal {
	return auth.Principal{Role: auth.RoleClient, ID: e.cl.ID}
}

func (e *env) reload(id uint) models.WashOrder {
	var o models.WashOrder
	e.fx.Reload(&o, id)
	return o
}

func TestBookWashAssignsFirstAndQueuesSecond(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	w := e.fx.Washer(base)

	uc := order.NewBookWash(e.repo, e.engine, orderdomain.DefaultPrices, nil)

	first, err := uc.Execute(ctx, e.client(), order.BookWashInput{VehicleID: e.veh.ID, WashType: "premium"})
	require.NoError(t, err)
	assert.Equal(t, "assigned", first.Status)
	require.NotNil(t, first.WasherID)
	assert.Equal(t, w.ID, *first.WasherID)
	assert.NotNil(t, first.AssignedAt)
	assert.Equal(t, 25.0, first.Price)

	second, err := uc.Execute(ctx, e.client(), order.BookWashInput{VehicleID: e.veh.ID, WashType: "basic"})
	require.NoError(t, err)
	assert.Equal(t, "pending", second.Status)
	assert.Nil(t, second.WasherID)

	assert.Equal(t, []uint{first.ID}, e.notes.ids)
}

func TestBookWashRejectsForeignVehicle(t *testing.T) {
	e := setup(t)
	other := e.fx.Client()
	foreign := e.fx.Vehicle(other.ID)

	_, err := order.NewBookWash(e.repo, e.engine, orderdomain.DefaultPrices, nil).
		Execute(context.Background(), e.client(), order.BookWashInput{VehicleID: foreign.ID, WashType: "basic"})
	assert.True(t, httperr.IsBusiness(err, "vehicle_not_found"))
}

func TestBookWashRejectsUnknownWashType(t *testing.T) {
	e := setup(t)

	_, err := order.NewBookWash(e.repo, e.engine, orderdomain.DefaultPrices, nil).
		Execute(context.Background(), e.client(), order.BookWashInput{VehicleID: e.veh.ID, WashType: "gold"})
	assert.True(t, httperr.IsBusiness(err, "invalid_wash_type"))
}

func TestAdminCancelFreesWasherAndBackfills(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	w1 := e.fx.Washer(base)
	w1.IsAvailable = false
	o := e.fx.Order(e.cl.ID, e.veh.ID, "assigned", &w1.ID, base)
	require.NoError(t, e.repo.UpdateWasher(ctx, w1))
	p := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base.Add(time.Minute))

	cancelled, backfilled, err := order.NewCancelOrder(e.repo, e.engine, nil).
		Execute(ctx, admin, o.ID, "client no-show")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "client no-show", cancelled.CancellationReason)
	assert.NotNil(t, cancelled.CancelledAt)

	require.Len(t, backfilled, 1)
	assert.Equal(t, p.ID, backfilled[0].ID)

	var washer models.Washer
	e.fx.Reload(&washer, w1.ID)
	assert.True(t, washer.IsAvailable)

	got := e.reload(p.ID)
	assert.Equal(t, "assigned", got.Status)
	require.NotNil(t, got.WasherID)
	assert.Equal(t, w1.ID, *got.WasherID)
	assert.Equal(t, []uint{p.ID}, e.notes.ids)
}

func TestCancelRules(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	uc := order.NewCancelOrder(e.repo, e.engine, nil)

	done := e.fx.Order(e.cl.ID, e.veh.ID, "completed", nil, base)
	_, _, err := uc.Execute(ctx, admin, done.ID, "")
	assert.True(t, httperr.IsBusiness(err, "order_completed"))

	gone := e.fx.Order(e.cl.ID, e.veh.ID, "cancelled", nil, base)
	_, _, err = uc.Execute(ctx, admin, gone.ID, "")
	assert.True(t, httperr.IsBusiness(err, "already_cancelled"))

	stranger := auth.Principal{Role: auth.RoleClient, ID: e.fx.Client().ID}
	mine := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base)
	_, _, err = uc.Execute(ctx, stranger, mine.ID, "")
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))

	got, _, err := uc.Execute(ctx, e.client(), mine.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled by client", got.CancellationReason)
}

func TestWashProgressAndCompletionRescan(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	w := e.fx.Washer(base)
	o := e.fx.Order(e.cl.ID, e.veh.ID, "assigned", &w.ID, base)
	next := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base.Add(time.Minute))
	washer := auth.Principal{Role: auth.RoleWasher, ID: w.ID}

	_, _, err := order.NewCompleteWash(e.repo, e.engine, true, nil).Execute(ctx, washer, o.ID)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))

	started, err := order.NewStartWash(e.repo, e.engine, nil).Execute(ctx, washer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", started.Status)

	completed, backfilled, err := order.NewCompleteWash(e.repo, e.engine, true, nil).Execute(ctx, washer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	require.Len(t, backfilled, 1)
	assert.Equal(t, next.ID, backfilled[0].ID)
	assert.Equal(t, w.ID, *e.reload(next.ID).WasherID)
}

func TestCompletionWithoutRescanLeavesQueue(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	w := e.fx.Washer(base)
	o := e.fx.Order(e.cl.ID, e.veh.ID, "in_progress", &w.ID, base)
	next := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base.Add(time.Minute))

	_, backfilled, err := order.NewCompleteWash(e.repo, e.engine, false, nil).
		Execute(ctx, auth.Principal{Role: auth.RoleWasher, ID: w.ID}, o.ID)
	require.NoError(t, err)
	assert.Empty(t, backfilled)
	assert.Equal(t, "pending", e.reload(next.ID).Status)
}

func TestStartWashByAnotherWasherIsNotFound(t *testing.T) {
	e := setup(t)
	w := e.fx.Washer(base)
	other := e.fx.Washer(base)
	o := e.fx.Order(e.cl.ID, e.veh.ID, "assigned", &w.ID, base)

	_, err := order.NewStartWash(e.repo, e.engine, nil).
		Execute(context.Background(), auth.Principal{Role: auth.RoleWasher, ID: other.ID}, o.ID)
	assert.True(t, httperr.IsBusiness(err, "order_not_found"))
}

func TestAssignWasher(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	uc := order.NewAssignWasher(e.repo, e.engine, nil)

	w1 := e.fx.Washer(base)
	w2 := e.fx.Washer(base.Add(time.Hour))
	o := e.fx.Order(e.cl.ID, e.veh.ID, "assigned", &w1.ID, base)
	waiting := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base.Add(time.Minute))

	_, err := uc.Execute(ctx, admin, waiting.ID, w1.ID)
	assert.True(t, httperr.IsBusiness(err, "washer_busy"))

	// reassigning o to w2 frees w1, which then picks up the waiting order
	got, err := uc.Execute(ctx, admin, o.ID, w2.ID)
	require.NoError(t, err)
	assert.Equal(t, w2.ID, *got.WasherID)
	assert.Equal(t, w1.ID, *e.reload(waiting.ID).WasherID)

	_, err = uc.Execute(ctx, auth.Principal{Role: auth.RoleClient, ID: e.cl.ID}, o.ID, w1.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
}

func TestAssignWasherRejectsUnavailableWasher(t *testing.T) {
	e := setup(t)
	w := e.fx.Washer(base)
	w.Status = "on_break"
	require.NoError(t, e.repo.UpdateWasher(context.Background(), w))
	o := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base)

	_, err := order.NewAssignWasher(e.repo, e.engine, nil).Execute(context.Background(), admin, o.ID, w.ID)
	assert.True(t, httperr.IsBusiness(err, "washer_unavailable"))
}

func TestToggleAvailabilityRescansWhenWasherBecomesEligible(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	uc := order.NewToggleAvailability(e.repo, e.engine, nil)

	w := e.fx.Washer(base)
	self := auth.Principal{Role: auth.RoleWasher, ID: w.ID}
	o := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base)

	off, err := uc.Execute(ctx, self, w.ID)
	require.NoError(t, err)
	assert.False(t, off.Washer.IsAvailable)
	assert.Zero(t, off.Assigned)

	on, err := uc.Execute(ctx, self, w.ID)
	require.NoError(t, err)
	assert.True(t, on.Washer.IsAvailable)
	assert.Equal(t, 1, on.Assigned)
	assert.Equal(t, "assigned", e.reload(o.ID).Status)

	other := e.fx.Washer(base)
	_, err = uc.Execute(ctx, auth.Principal{Role: auth.RoleWasher, ID: other.ID}, w.ID)
	assert.Error(t, err)
}

func TestSetWasherStatus(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	uc := order.NewSetWasherStatus(e.repo, e.engine, nil)

	w := e.fx.Washer(base)
	_, err := uc.Execute(ctx, admin, w.ID, "on_break")
	require.NoError(t, err)

	o := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base)
	res, err := uc.Execute(ctx, admin, w.ID, "active")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Assigned)
	assert.Equal(t, "assigned", e.reload(o.ID).Status)

	_, err = uc.Execute(ctx, admin, w.ID, "retired")
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))
}

func TestDeleteWasherRequeuesAndReassigns(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	leaving := e.fx.Washer(base)
	o := e.fx.Order(e.cl.ID, e.veh.ID, "in_progress", &leaving.ID, base)
	stays := e.fx.Washer(base.Add(time.Hour))

	requeued, err := order.NewDeleteWasher(e.repo, e.engine, nil).Execute(ctx, admin, leaving.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, requeued)

	got := e.reload(o.ID)
	assert.Equal(t, "assigned", got.Status)
	assert.Equal(t, stays.ID, *got.WasherID)
	assert.Nil(t, got.StartedAt)

	_, err = e.repo.GetWasher(ctx, leaving.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAutoAssignReportsCount(t *testing.T) {
	e := setup(t)
	e.fx.Washer(base)
	e.fx.Washer(base)
	for i := 0; i < 3; i++ {
		e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base.Add(time.Duration(i)*time.Minute))
	}

	n, err := order.NewAutoAssign(e.repo, e.engine, nil).Execute(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestQueries(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	q := order.NewQueries(e.repo, time.UTC, timezone.Fixed(base.Add(time.Hour)))

	w := e.fx.Washer(base)
	active := e.fx.Order(e.cl.ID, e.veh.ID, "assigned", &w.ID, base)
	done := e.fx.Order(e.cl.ID, e.veh.ID, "completed", &w.ID, base.AddDate(0, 0, -10))
	require.NoError(t, e.repo.CreateReview(ctx, &models.Review{
		WashOrderID: done.ID, ClientID: e.cl.ID, WasherID: &w.ID, Rating: 5,
	}))

	mine, err := q.ClientOrders(ctx, e.client())
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	washer := auth.Principal{Role: auth.RoleWasher, ID: w.ID}
	current, err := q.WasherCurrent(ctx, washer)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, active.ID, current[0].ID)

	completed, err := q.WasherCompleted(ctx, washer)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.NotNil(t, completed[0].Review)
	assert.Equal(t, 5, completed[0].Review.Rating)

	today, err := q.AdminOrders(ctx, admin, "", order.PeriodToday)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, active.ID, today[0].ID)

	month, err := q.AdminOrders(ctx, admin, "completed", order.PeriodMonth)
	require.NoError(t, err)
	assert.Len(t, month, 1)

	_, err = q.AdminOrders(ctx, admin, "", "year")
	assert.True(t, httperr.IsBusiness(err, "invalid_period"))

	detail, err := q.Detail(ctx, e.client(), active.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Appointment)

	_, err = q.Detail(ctx, auth.Principal{Role: auth.RoleClient, ID: e.fx.Client().ID}, active.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
}
