package appointment

import (
	"context"
	"time"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	apdomain "github.com/Horridhunk/carmannagement/internal/domain/appointment"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/timezone"
)

// ======================================================
// AVAILABILITY
// ======================================================

type SlotAvailability struct {
	models.TimeSlot
	AvailableSpots int `json:"available_spots"`
}

type ListAvailableSlots struct {
	repo  domain.Repository
	loc   *time.Location
	clock timezone.Clock
}

func NewListAvailableSlots(repo domain.Repository, loc *time.Location, clock timezone.Clock) *ListAvailableSlots {
	if clock == nil {
		clock = timezone.System
	}
	return &ListAvailableSlots{repo: repo, loc: loc, clock: clock}
}

// Execute returns the bookable slots of date with their remaining capacity.
func (uc *ListAvailableSlots) Execute(ctx context.Context, date string) ([]SlotAvailability, error) {
	now := uc.clock()
	if _, err := apdomain.ValidateDate(date, now, uc.loc); err != nil {
		return nil, err
	}

	slots, err := uc.repo.ListTimeSlotsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(slots))
	for i := range slots {
		ids[i] = slots[i].ID
	}
	counts, err := uc.repo.CountBookings(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]SlotAvailability, 0, len(slots))
	for i := range slots {
		s := &slots[i]
		if !apdomain.IsAvailable(s, counts[s.ID], now, uc.loc) {
			continue
		}
		out = append(out, SlotAvailability{
			TimeSlot:       *s,
			AvailableSpots: apdomain.AvailableSpots(s, counts[s.ID]),
		})
	}
	return out, nil
}

// ======================================================
// SEEDING
// ======================================================

type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// SeedTimeSlots creates the slots of a plan, leaving existing ones alone.
type SeedTimeSlots struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewSeedTimeSlots(repo domain.Repository, audit *audit.Dispatcher) *SeedTimeSlots {
	return &SeedTimeSlots{repo: repo, audit: audit}
}

func (uc *SeedTimeSlots) Execute(ctx context.Context, p auth.Principal, plan apdomain.SeedPlan) (*SeedResult, error) {
	if !p.IsAdmin() {
		return nil, errAdminOnly
	}

	slots, err := apdomain.PlanSlots(plan)
	if err != nil {
		return nil, err
	}

	res := &SeedResult{}
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		for i := range slots {
			s := &slots[i]
			exists, err := tx.TimeSlotExists(ctx, s.Date, s.StartTime)
			if err != nil {
				return err
			}
			if exists {
				res.Skipped++
				continue
			}
			if err := tx.CreateTimeSlot(ctx, s); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.For(p, "time_slots_seeded", "time_slot", 0, res))
	return res, nil
}

// ======================================================
// LISTING
// ======================================================

type ListAppointments struct {
	repo  domain.Repository
	loc   *time.Location
	clock timezone.Clock
}

func NewListAppointments(repo domain.Repository, loc *time.Location, clock timezone.Clock) *ListAppointments {
	if clock == nil {
		clock = timezone.System
	}
	return &ListAppointments{repo: repo, loc: loc, clock: clock}
}

// Execute lists a client's own appointments, or every appointment for an
// admin. With upcoming set only non-cancelled appointments from today on
// are returned.
func (uc *ListAppointments) Execute(ctx context.Context, p auth.Principal, upcoming bool) ([]models.Appointment, error) {
	var f domain.AppointmentFilter
	switch {
	case p.IsAdmin():
	case p.IsClient():
		f.ClientID = &p.ID
	default:
		return nil, errClientOnly
	}

	if upcoming {
		f.FromDate = uc.clock().In(uc.loc).Format(apdomain.DateLayout)
	} else {
		f.IncludeVoid = true
	}
	return uc.repo.ListAppointments(ctx, f)
}
