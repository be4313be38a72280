package models

import (
	"time"

	"github.com/google/uuid"
)

type UnitType string

const (
	UnitSeat UnitType = "seat"
	UnitBed  UnitType = "bed"
)

func (u UnitType) Valid() bool { return u == UnitSeat || u == UnitBed }

type Duration string

const (
	DurationDaily   Duration = "daily"
	DurationWeekly  Duration = "weekly"
	DurationMonthly Duration = "monthly"
)

func (d Duration) Valid() bool {
	return d == DurationDaily || d == DurationWeekly || d == DurationMonthly
}

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
	StatusCancelled PaymentStatus = "cancelled"
)

var transitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: {StatusCancelled},
}

// CanTransitionTo reports whether a booking in s may move to next.
// failed and cancelled are terminal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Booking reserves one seat or bed for an inclusive range of calendar dates.
// StartDate and EndDate are stored at UTC midnight.
type Booking struct {
	Base
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	PartnerID       uuid.UUID `gorm:"type:uuid;not null;index" json:"partner_id"`
	UnitType        UnitType  `gorm:"size:10;not null;index:idx_booking_unit" json:"booking_type"`
	InventoryUnitID uuid.UUID `gorm:"type:uuid;not null;index:idx_booking_unit" json:"inventory_unit_id"`

	StartDate       time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate         time.Time `gorm:"type:date;not null" json:"end_date"`
	BookingDuration Duration  `gorm:"size:10;not null" json:"booking_duration"`
	DurationCount   int       `gorm:"not null" json:"duration_count"`

	TotalPrice    float64       `gorm:"type:numeric(10,2);not null" json:"total_price"`
	Currency      string        `gorm:"size:3;not null" json:"currency"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null;index" json:"payment_status"`
	PaymentMethod string        `gorm:"size:30" json:"payment_method"`
	HoldExpiresAt *time.Time    `gorm:"index" json:"hold_expires_at,omitempty"`

	GatewayOrderID   *string `gorm:"size:255;unique" json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string `gorm:"size:255" json:"gateway_payment_id,omitempty"`
	GatewaySignature *string `gorm:"size:255" json:"-"`

	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	FailureReason      *string    `gorm:"type:text" json:"failure_reason,omitempty"`
	CancellationReason *string    `gorm:"type:text" json:"cancellation_reason,omitempty"`

	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Partner Partner `gorm:"foreignKey:PartnerID" json:"-"`
}

// HoldActive reports whether a pending booking still reserves its range at now.
func (b *Booking) HoldActive(now time.Time) bool {
	return b.PaymentStatus == StatusPending && b.HoldExpiresAt != nil && b.HoldExpiresAt.After(now)
}
