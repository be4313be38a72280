package models

import "github.com/google/uuid"

type State struct {
	Base
	Name   string `gorm:"size:100;not null;unique" json:"name"`
	Cities []City `json:"cities,omitempty"`
}

type City struct {
	Base
	StateID uuid.UUID `gorm:"type:uuid;not null;index" json:"state_id"`
	Name    string    `gorm:"size:100;not null" json:"name"`
	Areas   []Area    `json:"areas,omitempty"`
}

type Area struct {
	Base
	CityID uuid.UUID `gorm:"type:uuid;not null;index" json:"city_id"`
	Name   string    `gorm:"size:100;not null" json:"name"`
}
