package reporting_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Horridhunk/carmannagement/internal/logging"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/reporting"
	"github.com/Horridhunk/carmannagement/internal/testutil"
	"github.com/Horridhunk/carmannagement/internal/timezone"
)

// Tuesday 2026-03-10 12:00 UTC
var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type memCache struct {
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (m *memCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.sets++
	m.data[key] = raw
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type world struct {
	db  *gorm.DB
	fx  *testutil.Fixtures
	cl  *models.Client
	veh *models.Vehicle
	w   *models.Washer
}

func seed(t *testing.T) *world {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	cl := fx.Client()
	require.NoError(t, db.Model(cl).Update("created_at", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)).Error)

	wd := &world{db: db, fx: fx, cl: cl, veh: fx.Vehicle(cl.ID), w: fx.Washer(now.AddDate(-1, 0, 0))}

	completedToday := now.Add(-time.Hour)
	wd.order(t, "completed", "basic", 15, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), &completedToday)
	wd.order(t, "completed", "premium", 25, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC), nil)
	wd.order(t, "cancelled", "deluxe", 35, time.Date(2026, 3, 5, 11, 0, 0, 0, time.UTC), nil)
	wd.order(t, "pending", "basic", 15, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), nil)
	// previous period
	wd.order(t, "completed", "basic", 20, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), nil)

	s := fx.Slot("2026-03-11", "09:00", 3)
	require.NoError(t, db.Create(&models.Appointment{
		ClientID: cl.ID, VehicleID: wd.veh.ID, TimeSlotID: s.ID, WashType: "basic",
	}).Error)
	return wd
}

func (wd *world) order(t *testing.T, status, washType string, price float64, created time.Time, completed *time.Time) {
	t.Helper()
	o := &models.WashOrder{
		ClientID:    wd.cl.ID,
		VehicleID:   wd.veh.ID,
		WashType:    washType,
		Status:      status,
		Price:       price,
		CreatedAt:   created,
		CompletedAt: completed,
	}
	if status == "completed" {
		o.WasherID = &wd.w.ID
	}
	require.NoError(t, wd.db.Create(o).Error)
}

func newService(t *testing.T, db *gorm.DB, opts ...reporting.Option) *reporting.Service {
	sqlDB, err := db.DB()
	require.NoError(t, err)
	opts = append([]reporting.Option{reporting.WithClock(timezone.Fixed(now))}, opts...)
	return reporting.NewService(sqlDB, "sqlite3", time.UTC, logging.Discard(), opts...)
}

func TestDashboard(t *testing.T) {
	wd := seed(t)
	cache := newMemCache()
	svc := newService(t, wd.db, reporting.WithCache(cache, time.Minute))

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.CompletedToday)
	assert.Equal(t, 1, stats.TotalClients)
	assert.Equal(t, 1, stats.AvailableWashers)
	assert.Equal(t, 1, stats.UpcomingAppointments)
	assert.InDelta(t, 60.0, stats.Revenue, 0.001)
	assert.Equal(t, 1, cache.sets)

	// served from cache
	wd.fx.Client()
	again, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, again.TotalClients)
	assert.Equal(t, 1, cache.sets)

	svc.Invalidate(context.Background())
	fresh, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.TotalClients)
	assert.Equal(t, 2, cache.sets)
}

func TestAnalyticsDefaultRange(t *testing.T) {
	wd := seed(t)
	svc := newService(t, wd.db)

	start, end, err := svc.ParseRange("", "")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-08", start.Format("2006-01-02"))

	a, err := svc.Analytics(context.Background(), start, end)
	require.NoError(t, err)

	assert.InDelta(t, 15.0, a.RevenueToday, 0.001)
	assert.InDelta(t, 40.0, a.RevenueWeek, 0.001)
	assert.InDelta(t, 40.0, a.RevenuePeriod, 0.001)
	assert.InDelta(t, 100.0, a.RevenueGrowth, 0.001)

	assert.Equal(t, 4, a.TotalOrders)
	assert.Equal(t, 2, a.CompletedOrders)
	assert.Equal(t, 1, a.CancelledOrders)
	assert.Equal(t, 50.0, a.CompletionRate)
	assert.Equal(t, 25.0, a.CancellationRate)
	assert.Equal(t, 20.0, a.AverageOrder)

	assert.Equal(t, 1, a.NewCustomers)
	assert.Equal(t, 100.0, a.RepeatCustomers)

	require.Len(t, a.OrdersByWeekday, 7)
	assert.Equal(t, "Monday", a.OrdersByWeekday[0].Day)
	assert.Equal(t, "Thursday", a.PeakDay)
	assert.Equal(t, 2, a.PeakDayOrders)

	require.Len(t, a.DailyRevenue, 30)
	last := a.DailyRevenue[len(a.DailyRevenue)-1]
	assert.Equal(t, "2026-03-10", last.Date)
	assert.InDelta(t, 15.0, last.Revenue, 0.001)

	require.Len(t, a.ServiceDistribution, 3)
	assert.Equal(t, "basic", a.ServiceDistribution[0].WashType)
	assert.Equal(t, "Basic Wash", a.ServiceDistribution[0].Label)
	assert.Equal(t, 2, a.ServiceDistribution[0].Count)

	require.Len(t, a.TopWashers, 1)
	assert.Equal(t, wd.w.ID, a.TopWashers[0].WasherID)
	assert.Equal(t, 2, a.TopWashers[0].Completed)
}

func TestParseRangeSwapsAndValidates(t *testing.T) {
	svc := reporting.NewService(nil, "sqlite3", time.UTC, logging.Discard(), reporting.WithClock(timezone.Fixed(now)))

	start, end, err := svc.ParseRange("2026-03-10", "2026-03-01")
	require.NoError(t, err)
	assert.True(t, start.Before(end))
	assert.Equal(t, "2026-03-01", start.Format("2006-01-02"))

	_, _, err = svc.ParseRange("03/01/2026", "2026-03-10")
	assert.Error(t, err)
}

func TestDashboardPropagatesQueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

	svc := reporting.NewService(db, "sqlmock", time.UTC, logging.Discard(), reporting.WithClock(timezone.Fixed(now)))
	_, err = svc.Dashboard(context.Background())
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardCacheHitSkipsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cache := newMemCache()
	require.NoError(t, cache.SetJSON(context.Background(), "stats:dashboard", reporting.DashboardStats{TotalOrders: 7}, 0))

	svc := reporting.NewService(db, "sqlmock", time.UTC, logging.Discard(), reporting.WithCache(cache, time.Minute))
	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalOrders)
	assert.NoError(t, mock.ExpectationsWereMet())
}
