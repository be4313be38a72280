package models

import (
	"time"

	"github.com/google/uuid"
)

type Hostel struct {
	Base
	PartnerID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"partner_id"`
	AreaID          *uuid.UUID `gorm:"type:uuid;index" json:"area_id,omitempty"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	Address         string     `gorm:"type:text" json:"address"`
	Gender          string     `gorm:"size:10" json:"gender"`
	ImageURL        *string    `gorm:"size:255" json:"image_url,omitempty"`
	IsBookingActive bool       `gorm:"not null" json:"is_booking_active"`
	IsActive        bool       `gorm:"not null" json:"is_active"`

	Rooms []HostelRoom `gorm:"foreignKey:HostelID" json:"rooms,omitempty"`
}

type HostelRoom struct {
	Base
	HostelID   uuid.UUID `gorm:"type:uuid;not null;index" json:"hostel_id"`
	RoomNumber string    `gorm:"size:20;not null" json:"room_number"`
	Sharing    int       `json:"sharing"`
	IsActive   bool      `gorm:"not null" json:"is_active"`

	Beds []HostelBed `gorm:"foreignKey:RoomID" json:"beds,omitempty"`
}

type HostelBed struct {
	Base
	RoomID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"room_id"`
	BedNumber        int        `gorm:"not null" json:"bed_number"`
	Price            float64    `gorm:"type:numeric(10,2);not null" json:"price"`
	DailyPrice       *float64   `gorm:"type:numeric(10,2)" json:"daily_price,omitempty"`
	WeeklyPrice      *float64   `gorm:"type:numeric(10,2)" json:"weekly_price,omitempty"`
	IsAvailable      bool       `gorm:"not null" json:"is_available"`
	UnavailableUntil *time.Time `json:"unavailable_until,omitempty"`
	IsActive         bool       `gorm:"not null" json:"is_active"`
}
