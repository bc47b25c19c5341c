package reporting

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/Horridhunk/carmannagement/internal/domain/appointment"
	"github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/httperr"
)

const (
	defaultRangeDays = 30
	trendPoints      = 30
	topWasherLimit   = 5
)

type WeekdayCount struct {
	Day    string `json:"day"`
	Orders int    `json:"orders"`
}

type DailyRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type ServiceShare struct {
	WashType string `json:"wash_type"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
}

type WasherPerformance struct {
	WasherID  uint    `json:"washer_id" db:"washer_id"`
	FirstName string  `json:"first_name" db:"first_name"`
	LastName  string  `json:"last_name" db:"last_name"`
	Completed int     `json:"completed" db:"completed"`
	Revenue   float64 `json:"revenue" db:"revenue"`
}

type Analytics struct {
	From string `json:"from"`
	To   string `json:"to"`

	RevenueToday  float64 `json:"revenue_today"`
	RevenueWeek   float64 `json:"revenue_week"`
	RevenuePeriod float64 `json:"revenue_period"`
	RevenueGrowth float64 `json:"revenue_growth"`

	TotalOrders      int     `json:"total_orders"`
	CompletedOrders  int     `json:"completed_orders"`
	CancelledOrders  int     `json:"cancelled_orders"`
	CompletionRate   float64 `json:"completion_rate"`
	CancellationRate float64 `json:"cancellation_rate"`
	AverageOrder     float64 `json:"average_order_value"`

	NewCustomers    int     `json:"new_customers"`
	RepeatCustomers float64 `json:"repeat_customers_pct"`

	OrdersByWeekday []WeekdayCount `json:"orders_by_weekday"`
	PeakDay         string         `json:"peak_day"`
	PeakDayOrders   int            `json:"peak_day_orders"`

	DailyRevenue        []DailyRevenue      `json:"daily_revenue"`
	ServiceDistribution []ServiceShare      `json:"service_distribution"`
	TopWashers          []WasherPerformance `json:"top_washers"`
}

type orderRow struct {
	Status    string    `db:"status"`
	WashType  string    `db:"wash_type"`
	Price     float64   `db:"price"`
	CreatedAt time.Time `db:"created_at"`
}

// ParseRange turns optional YYYY-MM-DD bounds into a date range. Missing
// bounds default to the last 30 days and reversed bounds are swapped.
func (s *Service) ParseRange(from, to string) (time.Time, time.Time, error) {
	today := s.today()
	if from == "" || to == "" {
		return today.AddDate(0, 0, -defaultRangeDays), today, nil
	}

	start, err := time.ParseInLocation(appointment.DateLayout, from, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, httperr.ErrValidation("invalid_date", "Dates must use the YYYY-MM-DD format.")
	}
	end, err := time.ParseInLocation(appointment.DateLayout, to, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, httperr.ErrValidation("invalid_date", "Dates must use the YYYY-MM-DD format.")
	}
	if start.After(end) {
		start, end = end, start
	}
	return start, end, nil
}

// Analytics reports on orders created between the business days start and
// end, both inclusive.
func (s *Service) Analytics(ctx context.Context, start, end time.Time) (*Analytics, error) {
	today := s.today()
	weekAgo := today.AddDate(0, 0, -7)
	periodDays := int(math.Round(end.Sub(start).Hours() / 24))
	prevStart := start.AddDate(0, 0, -periodDays)
	endExcl := end.AddDate(0, 0, 1)

	lo, hi := prevStart, endExcl
	if weekAgo.Before(lo) {
		lo = weekAgo
	}
	if tomorrow := today.AddDate(0, 0, 1); tomorrow.After(hi) {
		hi = tomorrow
	}

	var rows []orderRow
	if err := s.selectAll(ctx, &rows,
		`SELECT status, wash_type, price, created_at FROM wash_orders
		 WHERE created_at >= ? AND created_at < ?`,
		lo.UTC(), hi.UTC(),
	); err != nil {
		return nil, err
	}

	a := &Analytics{
		From: start.Format(appointment.DateLayout),
		To:   end.Format(appointment.DateLayout),
	}

	weekday := make([]int, 7)
	daily := make(map[string]float64)
	services := make(map[string]int)
	var prevRevenue float64

	for _, r := range rows {
		at := r.CreatedAt.In(s.loc)
		completed := r.Status == string(order.StatusCompleted)

		if completed {
			if !at.Before(today) {
				a.RevenueToday += r.Price
			}
			if !at.Before(weekAgo) {
				a.RevenueWeek += r.Price
			}
			if !at.Before(prevStart) && at.Before(start) {
				prevRevenue += r.Price
			}
		}

		if at.Before(start) || !at.Before(endExcl) {
			continue
		}

		a.TotalOrders++
		weekday[at.Weekday()]++
		services[r.WashType]++
		switch order.Status(r.Status) {
		case order.StatusCompleted:
			a.CompletedOrders++
			a.RevenuePeriod += r.Price
			daily[at.Format(appointment.DateLayout)] += r.Price
		case order.StatusCancelled:
			a.CancelledOrders++
		}
	}

	a.CompletionRate = 100
	if a.TotalOrders > 0 {
		a.CompletionRate = pct(a.CompletedOrders, a.TotalOrders)
		a.CancellationRate = pct(a.CancelledOrders, a.TotalOrders)
	}
	if a.CompletedOrders > 0 {
		a.AverageOrder = round1(a.RevenuePeriod / float64(a.CompletedOrders))
	}

	switch {
	case prevRevenue > 0:
		a.RevenueGrowth = round1((a.RevenuePeriod - prevRevenue) / prevRevenue * 100)
	case a.RevenuePeriod > 0:
		a.RevenueGrowth = 100
	}

	a.OrdersByWeekday, a.PeakDay, a.PeakDayOrders = weekdays(weekday)
	a.DailyRevenue = trend(start, end, daily)
	a.ServiceDistribution = distribution(services)

	if err := s.customers(ctx, a, start, endExcl); err != nil {
		return nil, err
	}

	a.TopWashers = []WasherPerformance{}
	if err := s.selectAll(ctx, &a.TopWashers,
		`SELECT w.id AS washer_id, w.first_name, w.last_name,
		        COUNT(o.id) AS completed, COALESCE(SUM(o.price), 0) AS revenue
		 FROM wash_orders o
		 JOIN washers w ON w.id = o.washer_id
		 WHERE o.status = ? AND o.created_at >= ? AND o.created_at < ?
		 GROUP BY w.id, w.first_name, w.last_name
		 ORDER BY completed DESC, w.id ASC
		 LIMIT ?`,
		string(order.StatusCompleted), start.UTC(), endExcl.UTC(), topWasherLimit,
	); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) customers(ctx context.Context, a *Analytics, start, endExcl time.Time) error {
	if err := s.get(ctx, &a.NewCustomers,
		`SELECT COUNT(*) FROM clients WHERE created_at >= ? AND created_at < ?`,
		start.UTC(), endExcl.UTC(),
	); err != nil {
		return err
	}

	var total, repeat int
	if err := s.get(ctx, &total, `SELECT COUNT(*) FROM clients`); err != nil {
		return err
	}
	if err := s.get(ctx, &repeat,
		`SELECT COUNT(*) FROM (
			SELECT client_id FROM wash_orders GROUP BY client_id HAVING COUNT(*) > 1
		) repeaters`,
	); err != nil {
		return err
	}
	if total > 0 {
		a.RepeatCustomers = pct(repeat, total)
	}
	return nil
}

// weekdays lists order counts Monday first and picks the busiest day.
func weekdays(counts []int) ([]WeekdayCount, string, int) {
	out := make([]WeekdayCount, 0, 7)
	peak, peakOrders := "No data", 0
	for i := 1; i <= 7; i++ {
		d := time.Weekday(i % 7)
		out = append(out, WeekdayCount{Day: d.String(), Orders: counts[d]})
		if counts[d] > peakOrders {
			peak, peakOrders = d.String(), counts[d]
		}
	}
	return out, peak, peakOrders
}

// trend returns one point per day of the range, keeping the last 30.
func trend(start, end time.Time, daily map[string]float64) []DailyRevenue {
	var out []DailyRevenue
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(appointment.DateLayout)
		out = append(out, DailyRevenue{Date: key, Revenue: daily[key]})
	}
	if len(out) > trendPoints {
		out = out[len(out)-trendPoints:]
	}
	return out
}

func distribution(services map[string]int) []ServiceShare {
	out := make([]ServiceShare, 0, len(services))
	for wt, n := range services {
		out = append(out, ServiceShare{WashType: wt, Label: order.WashType(wt).Label(), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].WashType < out[j].WashType
	})
	return out
}

func pct(n, total int) float64 {
	return round1(float64(n) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
