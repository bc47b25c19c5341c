package appointment

import (
	"fmt"
	"time"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
)

type SeedPlan struct {
	From            time.Time
	Days            int
	Open            string
	Close           string
	IntervalMinutes int
	Capacity        int
}

// PlanSlots lays out the slots of plan, day by day. A slot is emitted only
// when it ends at or before closing time.
func PlanSlots(plan SeedPlan) ([]models.TimeSlot, error) {
	open, err := time.Parse(TimeLayout, plan.Open)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_open_time", fmt.Sprintf("Opening time %q must be HH:MM.", plan.Open))
	}
	closing, err := time.Parse(TimeLayout, plan.Close)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_close_time", fmt.Sprintf("Closing time %q must be HH:MM.", plan.Close))
	}
	if plan.IntervalMinutes <= 0 || plan.Capacity <= 0 || plan.Days <= 0 {
		return nil, httperr.ErrValidation("invalid_seed_plan", "Seed days, interval and capacity must all be positive.")
	}

	step := time.Duration(plan.IntervalMinutes) * time.Minute
	var slots []models.TimeSlot

	for day := 0; day < plan.Days; day++ {
		date := plan.From.AddDate(0, 0, day).Format(DateLayout)

		for cur := open; !cur.Add(step).After(closing); cur = cur.Add(step) {
			slots = append(slots, models.TimeSlot{
				Date:        date,
				StartTime:   cur.Format(TimeLayout),
				EndTime:     cur.Add(step).Format(TimeLayout),
				MaxCapacity: plan.Capacity,
				IsActive:    true,
			})
		}
	}

	return slots, nil
}
