package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Horridhunk/carmannagement/internal/httperr"
)

type WashOrder struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client,omitempty"`

	VehicleID uint     `gorm:"not null" json:"vehicle_id"`
	Vehicle   *Vehicle `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"vehicle,omitempty"`

	WasherID *uint   `gorm:"index" json:"washer_id"`
	Washer   *Washer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"washer,omitempty"`

	WashType string  `gorm:"size:20;not null" json:"wash_type"`
	Status   string  `gorm:"size:20;not null;index" json:"status"`
	Price    float64 `gorm:"not null" json:"price"`
	Notes    string  `gorm:"type:text" json:"notes"`

	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
	AssignedAt         *time.Time `json:"assigned_at"`
	StartedAt          *time.Time `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// activeOrderStatuses are the statuses in which an order occupies its washer.
var activeOrderStatuses = []string{"assigned", "in_progress"}

func (o *WashOrder) holdsWasher() bool {
	if o.WasherID == nil {
		return false
	}
	for _, s := range activeOrderStatuses {
		if o.Status == s {
			return true
		}
	}
	return false
}

// BeforeSave rejects any write that would give a washer a second active order.
func (o *WashOrder) BeforeSave(tx *gorm.DB) error {
	if !o.holdsWasher() {
		return nil
	}

	var count int64
	if err := tx.Session(&gorm.Session{NewDB: true}).
		Model(&WashOrder{}).
		Where("washer_id = ? AND status IN ? AND id <> ?", *o.WasherID, activeOrderStatuses, o.ID).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return httperr.ErrValidation(
			"washer_busy",
			fmt.Sprintf(
				"Washer %d already has %d active order(s). A washer can only handle one order at a time.",
				*o.WasherID, count,
			),
		)
	}

	return nil
}
