package models

import "time"

type Washer struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Email        string   `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	FirstName    string   `gorm:"size:50;not null" json:"first_name"`
	LastName     string   `gorm:"size:50;not null" json:"last_name"`
	Phone        string   `gorm:"size:15;uniqueIndex;not null" json:"phone"`
	HourlyRate   *float64 `json:"hourly_rate"`

	IsAvailable bool   `gorm:"not null" json:"is_available"`
	Status      string `gorm:"size:20;not null;index" json:"status"`

	DateHired time.Time `gorm:"not null" json:"date_hired"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Washer) FullName() string {
	return w.FirstName + " " + w.LastName
}
