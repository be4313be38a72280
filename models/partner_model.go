package models

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PartnerPending   = "pending"
	PartnerApproved  = "approved"
	PartnerRejected  = "rejected"
	PartnerSuspended = "suspended"
)

const (
	CommissionPercentage = "percentage"
	CommissionFlat       = "flat"
)

// CommissionSettings is stored as JSON on the partner row.
type CommissionSettings struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// Amount is the platform's cut of gross, never more than gross.
func (c CommissionSettings) Amount(gross float64) float64 {
	var cut float64
	switch c.Type {
	case CommissionPercentage:
		cut = gross * c.Value / 100
	case CommissionFlat:
		cut = c.Value
	}
	cut = math.Round(cut*100) / 100
	if cut > gross {
		return gross
	}
	if cut < 0 {
		return 0
	}
	return cut
}

type Partner struct {
	Base
	UserID             uuid.UUID      `gorm:"type:uuid;not null;unique" json:"user_id"`
	BusinessName       string         `gorm:"size:255;not null" json:"business_name"`
	ContactPhone       string         `gorm:"size:20" json:"contact_phone"`
	Status             string         `gorm:"size:20;not null;index" json:"status"`
	CommissionSettings datatypes.JSON `json:"commission_settings"`
	RejectionReason    *string        `gorm:"type:text" json:"rejection_reason,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Commission decodes the stored settings. A partner with none set yields the
// zero value.
func (p *Partner) Commission() (CommissionSettings, error) {
	var cs CommissionSettings
	if len(p.CommissionSettings) == 0 {
		return cs, nil
	}
	if err := json.Unmarshal(p.CommissionSettings, &cs); err != nil {
		return CommissionSettings{}, fmt.Errorf("partner %s commission settings: %w", p.ID, err)
	}
	return cs, nil
}

func (p *Partner) SetCommission(cs CommissionSettings) error {
	b, err := json.Marshal(cs)
	if err != nil {
		return err
	}
	p.CommissionSettings = datatypes.JSON(b)
	return nil
}
