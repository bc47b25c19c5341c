package appointment

import (
	"time"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Start is the slot's starting instant in loc.
func Start(slot *models.TimeSlot, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, slot.Date+" "+slot.StartTime, loc)
}

// IsPast reports whether the slot has started. Unparseable slots count as past.
func IsPast(slot *models.TimeSlot, now time.Time, loc *time.Location) bool {
	start, err := Start(slot, loc)
	if err != nil {
		return true
	}
	return start.Before(now)
}

func AvailableSpots(slot *models.TimeSlot, bookings int) int {
	spots := slot.MaxCapacity - bookings
	if spots < 0 {
		return 0
	}
	return spots
}

func IsAvailable(slot *models.TimeSlot, bookings int, now time.Time, loc *time.Location) bool {
	return CanBook(slot, bookings, now, loc) == nil
}

// CanBook checks a new booking against a slot with the given number of
// non-cancelled appointments.
func CanBook(slot *models.TimeSlot, bookings int, now time.Time, loc *time.Location) error {
	if !slot.IsActive {
		return httperr.ErrConflict("slot_inactive", "This time slot is not available.")
	}
	if IsPast(slot, now, loc) {
		return httperr.ErrConflict("slot_past", "Cannot book appointments for past time slots.")
	}
	if bookings >= slot.MaxCapacity {
		return httperr.ErrConflict("slot_full", "This time slot is fully booked.")
	}
	return nil
}

// ValidateDate rejects malformed dates and dates before today in loc.
func ValidateDate(date string, now time.Time, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, httperr.ErrValidation("invalid_date", "Date must be formatted as YYYY-MM-DD.")
	}

	lt := now.In(loc)
	today := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	if d.Before(today) {
		return time.Time{}, httperr.ErrValidation("past_date", "Cannot select past dates.")
	}
	return d, nil
}
