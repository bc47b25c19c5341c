package models

import "time"

type PasswordResetToken struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Token  string `gorm:"size:36;uniqueIndex;not null" json:"-"`
	IsUsed bool   `gorm:"not null" json:"is_used"`

	CreatedAt time.Time `json:"created_at"`
}
