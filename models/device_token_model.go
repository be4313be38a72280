package models

import "github.com/google/uuid"

type DeviceToken struct {
	Base
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Token    string    `gorm:"size:512;not null;unique" json:"token"`
	Platform string    `gorm:"size:20" json:"platform"`
}
