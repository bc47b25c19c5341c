package models

import "time"

type Vehicle struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client,omitempty"`

	Make         string `gorm:"size:50;not null" json:"make"`
	Model        string `gorm:"size:50;not null" json:"model"`
	Year         *int   `json:"year"`
	Color        string `gorm:"size:30" json:"color"`
	LicensePlate string `gorm:"size:20;uniqueIndex;not null" json:"license_plate"`
	VehicleType  string `gorm:"size:20;not null" json:"vehicle_type"`

	CreatedAt time.Time `json:"created_at"`
}

var VehicleTypes = []string{"sedan", "suv", "truck", "van", "motorcycle", "other"}
