package models

import "time"

type Review struct {
	ID uint `gorm:"primaryKey" json:"id"`

	WashOrderID uint       `gorm:"uniqueIndex;not null" json:"wash_order_id"`
	WashOrder   *WashOrder `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"wash_order,omitempty"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client,omitempty"`

	WasherID *uint   `gorm:"index" json:"washer_id"`
	Washer   *Washer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"washer,omitempty"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
}
