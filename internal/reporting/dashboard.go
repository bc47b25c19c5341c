package reporting

import (
	"context"

	"github.com/Horridhunk/carmannagement/internal/domain/appointment"
)

const dashboardKey = "stats:dashboard"

type DashboardStats struct {
	TotalOrders          int     `json:"total_orders" db:"total_orders"`
	PendingOrders        int     `json:"pending_orders" db:"pending_orders"`
	InProgressOrders     int     `json:"in_progress_orders" db:"in_progress_orders"`
	CompletedToday       int     `json:"completed_today" db:"completed_today"`
	TotalClients         int     `json:"total_clients" db:"total_clients"`
	TotalWashers         int     `json:"total_washers" db:"total_washers"`
	AvailableWashers     int     `json:"available_washers" db:"available_washers"`
	TotalVehicles        int     `json:"total_vehicles" db:"total_vehicles"`
	UpcomingAppointments int     `json:"upcoming_appointments" db:"upcoming_appointments"`
	Revenue              float64 `json:"revenue" db:"revenue"`
}

const dashboardQuery = `
SELECT
	(SELECT COUNT(*) FROM wash_orders) AS total_orders,
	(SELECT COUNT(*) FROM wash_orders WHERE status IN ('pending', 'scheduled')) AS pending_orders,
	(SELECT COUNT(*) FROM wash_orders WHERE status = 'in_progress') AS in_progress_orders,
	(SELECT COUNT(*) FROM wash_orders WHERE status = 'completed' AND completed_at >= ?) AS completed_today,
	(SELECT COUNT(*) FROM clients) AS total_clients,
	(SELECT COUNT(*) FROM washers) AS total_washers,
	(SELECT COUNT(*) FROM washers
		WHERE is_available = ? AND status = 'active'
		AND id NOT IN (
			SELECT washer_id FROM wash_orders
			WHERE washer_id IS NOT NULL AND status IN ('assigned', 'in_progress')
		)) AS available_washers,
	(SELECT COUNT(*) FROM vehicles) AS total_vehicles,
	(SELECT COUNT(*) FROM appointments a
		JOIN time_slots ts ON ts.id = a.time_slot_id
		WHERE a.is_cancelled = ? AND ts.date >= ?) AS upcoming_appointments,
	(SELECT COALESCE(SUM(price), 0) FROM wash_orders WHERE status = 'completed') AS revenue
`

// Invalidate drops the cached dashboard so the next read recomputes it.
// Failures are logged; the entry still expires after the cache TTL.
func (s *Service) Invalidate(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardKey); err != nil {
		s.log.WithError(err).Warn("dashboard cache eviction failed")
	}
}

// Dashboard returns the headline counters, from cache when possible. Cache
// failures are logged and the stats are computed from the database.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	if s.cache != nil {
		hit, err := s.cache.GetJSON(ctx, dashboardKey, &stats)
		if err != nil {
			s.log.WithError(err).Warn("dashboard cache read failed")
		}
		if hit {
			return &stats, nil
		}
	}

	today := s.today()
	if err := s.get(ctx, &stats, dashboardQuery,
		today.UTC(),
		true,
		false, today.Format(appointment.DateLayout),
	); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, dashboardKey, stats, s.ttl); err != nil {
			s.log.WithError(err).Warn("dashboard cache write failed")
		}
	}
	return &stats, nil
}
