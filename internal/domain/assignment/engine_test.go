package assignment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	"github.com/Horridhunk/carmannagement/internal/infra/repository"
	"github.com/Horridhunk/carmannagement/internal/logging"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/testutil"
	"github.com/Horridhunk/carmannagement/internal/timezone"
)

var base = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	orders []uint
	err    error
}

func (n *recordingNotifier) NotifyAssignment(_ context.Context, o *models.WashOrder) error {
	n.orders = append(n.orders, o.ID)
	return n.err
}

type env struct {
	repo *repository.GormRepository
	fx   *testutil.Fixtures
	cl   *models.Client
	veh  *models.Vehicle
}

func setup(t *testing.T) env {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	cl := fx.Client()
	return env{
		repo: repository.NewGormRepository(db),
		fx:   fx,
		cl:   cl,
		veh:  fx.Vehicle(cl.ID),
	}
}

func newEngine(policy domain.SelectionPolicy, n assignment.Notifier) *assignment.Engine {
	return assignment.NewEngine(policy, n, timezone.Fixed(base.Add(time.Hour)), logging.Discard(), nil)
}

func TestScanIsFIFOAndStopsWhenNoWasherIsFree(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	w := e.fx.Washer(base.AddDate(-1, 0, 0))
	// created out of id order to prove created_at drives the queue
	newer := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base.Add(2*time.Minute))
	older := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base.Add(time.Minute))
	third := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base.Add(3*time.Minute))

	n := &recordingNotifier{}
	assigned, err := newEngine(domain.PolicySeniority, n).AutoAssign(ctx, e.repo)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, older.ID, assigned[0].ID)
	assert.Equal(t, []uint{older.ID}, n.orders)

	var got models.WashOrder
	e.fx.Reload(&got, older.ID)
	assert.Equal(t, "assigned", got.Status)
	require.NotNil(t, got.WasherID)
	assert.Equal(t, w.ID, *got.WasherID)
	require.NotNil(t, got.AssignedAt)

	for _, id := range []uint{newer.ID, third.ID} {
		var o models.WashOrder
		e.fx.Reload(&o, id)
		assert.Equal(t, "pending", o.Status)
		assert.Nil(t, o.WasherID)
	}
}

func TestScanGivesEachWasherOneOrder(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	e.fx.Washer(base.AddDate(-2, 0, 0))
	e.fx.Washer(base.AddDate(-1, 0, 0))
	for i := 0; i < 3; i++ {
		e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base.Add(time.Duration(i)*time.Minute))
	}

	assigned, err := newEngine(domain.PolicySeniority, nil).Scan(ctx, e.repo)
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	assert.NotEqual(t, *assigned[0].WasherID, *assigned[1].WasherID)

	// a second scan finds nobody free
	again, err := newEngine(domain.PolicySeniority, nil).Scan(ctx, e.repo)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestScanTreatsScheduledLikePending(t *testing.T) {
	e := setup(t)
	e.fx.Washer(base)
	o := e.fx.Order(e.cl.ID, e.veh.ID, "scheduled", nil, base)

	assigned, err := newEngine(domain.PolicySeniority, nil).Scan(context.Background(), e.repo)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, o.ID, assigned[0].ID)
}

func TestScanSkipsWashersThatAreNotTrulyAvailable(t *testing.T) {
	e := setup(t)

	busy := e.fx.Washer(base.AddDate(-5, 0, 0))
	e.fx.Order(e.cl.ID, e.veh.ID, "in_progress", &busy.ID, base.Add(-time.Hour))

	off := e.fx.Washer(base.AddDate(-4, 0, 0))
	off.IsAvailable = false
	require.NoError(t, e.repo.UpdateWasher(context.Background(), off))

	onBreak := e.fx.Washer(base.AddDate(-3, 0, 0))
	onBreak.Status = "on_break"
	require.NoError(t, e.repo.UpdateWasher(context.Background(), onBreak))

	free := e.fx.Washer(base.AddDate(-1, 0, 0))
	e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base)

	assigned, err := newEngine(domain.PolicySeniority, nil).Scan(context.Background(), e.repo)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, free.ID, *assigned[0].WasherID)
}

func TestSelectionPolicy(t *testing.T) {
	cases := []struct {
		policy domain.SelectionPolicy
		want   int
	}{
		{domain.PolicySeniority, 1},
		{domain.PolicyRegistration, 0},
	}

	for _, tc := range cases {
		t.Run(string(tc.policy), func(t *testing.T) {
			e := setup(t)
			washers := []*models.Washer{
				e.fx.Washer(base.AddDate(-1, 0, 0)),
				e.fx.Washer(base.AddDate(-6, 0, 0)),
			}
			e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base)

			assigned, err := newEngine(tc.policy, nil).Scan(context.Background(), e.repo)
			require.NoError(t, err)
			require.Len(t, assigned, 1)
			assert.Equal(t, washers[tc.want].ID, *assigned[0].WasherID)
		})
	}
}

func TestNotificationFailureDoesNotFailAssignment(t *testing.T) {
	e := setup(t)
	e.fx.Washer(base)
	o := e.fx.Order(e.cl.ID, e.veh.ID, "pending", nil, base)

	n := &recordingNotifier{err: errors.New("smtp down")}
	assigned, err := newEngine(domain.PolicySeniority, n).AutoAssign(context.Background(), e.repo)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, []uint{o.ID}, n.orders)

	var got models.WashOrder
	e.fx.Reload(&got, o.ID)
	assert.Equal(t, "assigned", got.Status)
}

func TestPickForLeavesOrderUntouchedWhenNobodyIsFree(t *testing.T) {
	e := setup(t)
	o := &models.WashOrder{Status: "pending"}

	ok, err := newEngine(domain.PolicySeniority, nil).PickFor(context.Background(), e.repo, o)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "pending", o.Status)
	assert.Nil(t, o.WasherID)
}
