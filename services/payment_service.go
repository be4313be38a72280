package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/events"
	"github.com/anjiri1684/study_space/models"
	"github.com/anjiri1684/study_space/obs"
	"github.com/anjiri1684/study_space/payments"
	"github.com/anjiri1684/study_space/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const reasonSlotTaken = "slot_taken_after_hold_expiry"

type PaymentService struct {
	db      *gorm.DB
	log     *logrus.Logger
	events  *events.Dispatcher
	gateway payments.Gateway
	secret  string
	cfg     BookingConfig
	now     func() time.Time
}

func NewPaymentService(db *gorm.DB, log *logrus.Logger, dispatcher *events.Dispatcher, gw payments.Gateway, secret string, cfg BookingConfig) *PaymentService {
	return &PaymentService{db: db, log: log, events: dispatcher, gateway: gw, secret: secret, cfg: cfg, now: time.Now}
}

func (s *PaymentService) SetClock(now func() time.Time) { s.now = now }

func (s *PaymentService) clock() time.Time { return s.now().UTC() }

type CreateOrderInput struct {
	Amount      float64
	Currency    string
	BookingID   uuid.UUID
	BookingType models.UnitType
}

type OrderResult struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CreateOrder opens a gateway order for a pending booking. Calling it again
// for the same booking returns the order already on file.
func (s *PaymentService) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (*OrderResult, error) {
	if !strings.EqualFold(in.Currency, s.cfg.Currency) {
		return nil, apperror.Validation("currency must be " + s.cfg.Currency)
	}

	db := s.db.WithContext(ctx)
	var b models.Booking
	if err := db.First(&b, "id = ?", in.BookingID).Error; err != nil {
		return nil, notFoundOr(err, "booking not found")
	}
	if b.UserID != actor.UserID {
		return nil, apperror.Forbidden("only the booking owner can pay for it")
	}
	if b.UnitType != in.BookingType {
		return nil, apperror.Validation("bookingType does not match the booking")
	}
	if b.PaymentStatus != models.StatusPending {
		return nil, apperror.Terminal("booking is " + string(b.PaymentStatus) + " and cannot be paid")
	}
	if !b.HoldActive(s.clock()) {
		return nil, apperror.Terminal("the hold on this booking has expired, please book again")
	}
	if !WithinTolerance(in.Amount, b.TotalPrice, s.cfg.PriceTolerance) {
		return nil, apperror.Validation("amount does not match the booking total")
	}
	if b.GatewayOrderID != nil {
		return &OrderResult{OrderID: *b.GatewayOrderID, Amount: b.TotalPrice, Currency: b.Currency}, nil
	}

	order, err := s.gateway.CreateOrder(ctx, payments.OrderRequest{
		Amount:   b.TotalPrice,
		Currency: b.Currency,
		Receipt:  b.ID.String(),
		Notes:    map[string]string{"booking_type": string(b.UnitType)},
	})
	if err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Error("🔥 Gateway order creation failed")
		return nil, apperror.Wrap(apperror.KindInternal, "could not create payment order", err)
	}

	res := db.Model(&models.Booking{}).
		Where("id = ? AND gateway_order_id IS NULL AND payment_status = ?", b.ID, models.StatusPending).
		Updates(map[string]interface{}{"gateway_order_id": order.ID, "updated_at": s.clock()})
	if res.Error != nil {
		return nil, apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		// a concurrent request stored its order first
		if err := db.First(&b, "id = ?", b.ID).Error; err != nil {
			return nil, apperror.Internal(err)
		}
		if b.GatewayOrderID == nil {
			return nil, apperror.Terminal("booking is " + string(b.PaymentStatus) + " and cannot be paid")
		}
		return &OrderResult{OrderID: *b.GatewayOrderID, Amount: b.TotalPrice, Currency: b.Currency}, nil
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "order_id": order.ID}).Info("✅ Payment order created")
	return &OrderResult{OrderID: order.ID, Amount: b.TotalPrice, Currency: b.Currency}, nil
}

type VerifyInput struct {
	PaymentID string
	OrderID   string
	Signature string
	BookingID uuid.UUID
}

// Verify applies a signed gateway callback. The signature is checked before
// anything is read, and a replay of an applied callback is a successful no-op.
func (s *PaymentService) Verify(ctx context.Context, in VerifyInput) (*models.Booking, error) {
	ctx, span := obs.Tracer().Start(ctx, "payment.verify")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", in.BookingID.String()), attribute.String("order.id", in.OrderID))

	if !payments.VerifySignature(s.secret, in.OrderID, in.PaymentID, in.Signature) {
		s.log.WithFields(logrus.Fields{
			"event":      "payment.signature_mismatch",
			"security":   true,
			"booking_id": in.BookingID,
			"order_id":   in.OrderID,
			"payment_id": in.PaymentID,
		}).Warn("⚠️ Payment signature mismatch, booking left untouched")
		span.SetAttributes(attribute.Bool("signature.valid", false))
		return nil, apperror.SignatureMismatch()
	}

	now := s.clock()
	var b models.Booking
	var outcome string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, "id = ? AND gateway_order_id = ?", in.BookingID, in.OrderID).Error; err != nil {
			return notFoundOr(err, "no booking matches this payment order")
		}
		// unit before booking, the same order CreateBooking takes its locks in
		if _, err := loadUnit(tx, b.UnitType, b.InventoryUnitID, true); err != nil {
			return err
		}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("User").
			First(&b, "id = ? AND gateway_order_id = ?", in.BookingID, in.OrderID).Error
		if err != nil {
			return notFoundOr(err, "no booking matches this payment order")
		}

		switch b.PaymentStatus {
		case models.StatusCompleted:
			if b.GatewayPaymentID != nil && *b.GatewayPaymentID == in.PaymentID {
				outcome = "replay"
				return nil
			}
			return apperror.Terminal("booking was already paid by a different payment")
		}
		if b.PaymentStatus.IsTerminal() {
			if b.GatewayPaymentID != nil {
				outcome = "closed"
				return nil
			}
			// money was captured for a booking that can no longer complete
			res := tx.Model(&models.Booking{}).
				Where("id = ? AND gateway_payment_id IS NULL", b.ID).
				Updates(map[string]interface{}{"gateway_payment_id": in.PaymentID, "updated_at": now})
			if res.Error != nil {
				return res.Error
			}
			b.GatewayPaymentID = &in.PaymentID
			outcome = "lost"
			return nil
		}

		if !b.HoldActive(now) {
			overlap, err := hasOverlap(tx, b.UnitType, b.InventoryUnitID, rangeOf(&b), now, b.ID)
			if err != nil {
				return err
			}
			if overlap {
				reason := reasonSlotTaken
				if err := tx.Model(&models.Booking{}).
					Where("id = ? AND payment_status = ?", b.ID, models.StatusPending).
					Updates(map[string]interface{}{
						"payment_status":     models.StatusFailed,
						"failure_reason":     reason,
						"gateway_payment_id": in.PaymentID,
						"updated_at":         now,
					}).Error; err != nil {
					return err
				}
				b.PaymentStatus, b.FailureReason = models.StatusFailed, &reason
				outcome = "lost"
				return nil
			}
		}

		res := tx.Model(&models.Booking{}).
			Where("id = ? AND gateway_order_id = ? AND payment_status = ?", b.ID, in.OrderID, models.StatusPending).
			Updates(map[string]interface{}{
				"payment_status":     models.StatusCompleted,
				"gateway_payment_id": in.PaymentID,
				"gateway_signature":  in.Signature,
				"completed_at":       now,
				"updated_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Terminal("booking changed state, reload and retry")
		}
		b.PaymentStatus, b.GatewayPaymentID, b.GatewaySignature, b.CompletedAt = models.StatusCompleted, &in.PaymentID, &in.Signature, &now

		receipt, err := utils.GenerateReceiptNumber(tx, now)
		if err != nil {
			return err
		}
		if err := tx.Create(&models.Transaction{
			Base:             models.Base{CreatedAt: now},
			BookingID:        b.ID,
			UserID:           b.UserID,
			PartnerID:        b.PartnerID,
			Kind:             models.TransactionPayment,
			Amount:           b.TotalPrice,
			Currency:         b.Currency,
			ReceiptNumber:    receipt,
			GatewayPaymentID: in.PaymentID,
		}).Error; err != nil {
			return err
		}
		outcome = "completed"
		if !rangeOf(&b).Contains(now) {
			return nil
		}
		return refreshAvailability(tx, b.UnitType, b.InventoryUnitID, now)
	})
	if err != nil {
		span.RecordError(err)
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		s.log.WithError(err).WithField("booking_id", in.BookingID).Error("🔥 CRITICAL: payment verification failed after valid signature")
		return nil, apperror.Internal(err)
	}

	switch outcome {
	case "replay":
		s.log.WithField("booking_id", b.ID).Info("Payment callback already processed")
		return &b, nil
	case "closed":
		return nil, apperror.Terminal("booking is " + string(b.PaymentStatus) + ", payment cannot be applied")
	case "lost":
		evt := events.FromBooking(events.BookingFailed, &b, now)
		evt.RefundDue = true
		s.events.Dispatch(ctx, evt)
		s.log.WithFields(logrus.Fields{"booking_id": b.ID, "payment_id": in.PaymentID, "status": b.PaymentStatus}).
			Warn("⚠️ Payment captured for a booking that can no longer complete, refund due")
		if b.FailureReason != nil && *b.FailureReason == reasonSlotTaken {
			return nil, apperror.Terminal("the hold expired and the slot was taken before payment completed")
		}
		return nil, apperror.Terminal("booking is " + string(b.PaymentStatus) + ", payment cannot be applied")
	}

	s.events.Dispatch(ctx, events.FromBooking(events.BookingCompleted, &b, now))
	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "payment_id": in.PaymentID}).Info("✅ Payment verified, booking completed")
	return &b, nil
}

type FailInput struct {
	BookingID uuid.UUID
	OrderID   string
	Reason    string
}

// Fail records an explicit gateway failure reported by the checkout client.
func (s *PaymentService) Fail(ctx context.Context, actor Actor, in FailInput) (*models.Booking, error) {
	now := s.clock()
	if in.Reason == "" {
		in.Reason = "payment_failed"
	}
	var b models.Booking
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("User").Where("id = ?", in.BookingID)
		if in.OrderID != "" {
			q = q.Where("gateway_order_id = ?", in.OrderID)
		}
		if err := q.First(&b).Error; err != nil {
			return notFoundOr(err, "booking not found")
		}
		if !actor.IsAdmin() && b.UserID != actor.UserID {
			return apperror.Forbidden("only the booking owner can report a payment failure")
		}
		if b.PaymentStatus == models.StatusFailed {
			return nil
		}
		if !b.PaymentStatus.CanTransitionTo(models.StatusFailed) {
			return apperror.Terminal("a " + string(b.PaymentStatus) + " booking cannot be marked failed")
		}
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND payment_status = ?", b.ID, models.StatusPending).
			Updates(map[string]interface{}{"payment_status": models.StatusFailed, "failure_reason": in.Reason, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		b.PaymentStatus, b.FailureReason = models.StatusFailed, &in.Reason
		changed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.Internal(err)
	}
	if changed {
		s.events.Dispatch(ctx, events.FromBooking(events.BookingFailed, &b, now))
	}
	return &b, nil
}
