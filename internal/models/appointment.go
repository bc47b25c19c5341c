package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client,omitempty"`

	VehicleID uint     `gorm:"not null" json:"vehicle_id"`
	Vehicle   *Vehicle `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"vehicle,omitempty"`

	TimeSlotID uint      `gorm:"index;not null" json:"time_slot_id"`
	TimeSlot   *TimeSlot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"time_slot,omitempty"`

	WashOrderID *uint      `gorm:"uniqueIndex" json:"wash_order_id"`
	WashOrder   *WashOrder `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"wash_order,omitempty"`

	WashType            string `gorm:"size:20;not null" json:"wash_type"`
	SpecialInstructions string `gorm:"type:text" json:"special_instructions"`

	IsConfirmed        bool       `gorm:"not null" json:"is_confirmed"`
	IsCancelled        bool       `gorm:"not null;index" json:"is_cancelled"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
