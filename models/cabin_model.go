package models

import (
	"time"

	"github.com/google/uuid"
)

// Cabin is a reading room owned by a partner.
type Cabin struct {
	Base
	PartnerID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"partner_id"`
	AreaID          *uuid.UUID `gorm:"type:uuid;index" json:"area_id,omitempty"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	Address         string     `gorm:"type:text" json:"address"`
	Description     *string    `gorm:"type:text" json:"description,omitempty"`
	ImageURL        *string    `gorm:"size:255" json:"image_url,omitempty"`
	IsBookingActive bool       `gorm:"not null" json:"is_booking_active"`
	IsActive        bool       `gorm:"not null" json:"is_active"`

	Seats []Seat `json:"seats,omitempty"`
}

type Seat struct {
	Base
	CabinID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"cabin_id"`
	Number           int        `gorm:"not null" json:"number"`
	Price            float64    `gorm:"type:numeric(10,2);not null" json:"price"`
	DailyPrice       *float64   `gorm:"type:numeric(10,2)" json:"daily_price,omitempty"`
	WeeklyPrice      *float64   `gorm:"type:numeric(10,2)" json:"weekly_price,omitempty"`
	IsAvailable      bool       `gorm:"not null" json:"is_available"`
	UnavailableUntil *time.Time `json:"unavailable_until,omitempty"`
	IsActive         bool       `gorm:"not null" json:"is_active"`
}
