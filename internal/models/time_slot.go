package models

import "time"

// TimeSlot is a bookable interval. Date is "2006-01-02" and the times are
// "15:04", both in the business timezone.
type TimeSlot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Date        string `gorm:"size:10;not null;uniqueIndex:ux_time_slots_date_start" json:"date"`
	StartTime   string `gorm:"size:5;not null;uniqueIndex:ux_time_slots_date_start" json:"start_time"`
	EndTime     string `gorm:"size:5;not null" json:"end_time"`
	MaxCapacity int    `gorm:"not null" json:"max_capacity"`
	IsActive    bool   `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}
