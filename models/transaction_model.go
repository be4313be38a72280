package models

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const TransactionPayment = "payment"

var ErrTransactionImmutable = errors.New("transactions are append-only")

// Transaction is the ledger row written when a booking is paid. Rows are never
// updated or deleted.
type Transaction struct {
	Base
	BookingID        uuid.UUID `gorm:"type:uuid;not null;index" json:"booking_id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	PartnerID        uuid.UUID `gorm:"type:uuid;not null;index" json:"partner_id"`
	Kind             string    `gorm:"size:20;not null" json:"kind"`
	Amount           float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency         string    `gorm:"size:3;not null" json:"currency"`
	ReceiptNumber    string    `gorm:"size:32;not null;unique" json:"receipt_number"`
	GatewayPaymentID string    `gorm:"size:255" json:"gateway_payment_id"`
}

func (t *Transaction) BeforeUpdate(tx *gorm.DB) error { return ErrTransactionImmutable }
func (t *Transaction) BeforeDelete(tx *gorm.DB) error { return ErrTransactionImmutable }
