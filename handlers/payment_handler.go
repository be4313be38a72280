package handlers

import (
	"github.com/anjiri1684/study_space/middleware"
	"github.com/anjiri1684/study_space/models"
	"github.com/anjiri1684/study_space/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"required,len=3"`
	BookingID   string  `json:"bookingId" validate:"required,uuid"`
	BookingType string  `json:"bookingType" validate:"required,oneof=seat bed"`
}

type VerifyPaymentRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
	OrderID   string `json:"orderId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	BookingID string `json:"bookingId" validate:"required,uuid"`
}

type PaymentFailureRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid"`
	OrderID   string `json:"orderId,omitempty"`
	Reason    string `json:"reason,omitempty" validate:"max=200"`
}

func (h *Handler) CreatePaymentOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.Payments.CreateOrder(c.UserContext(), middleware.CurrentActor(c), services.CreateOrderInput{
		Amount:      req.Amount,
		Currency:    req.Currency,
		BookingID:   uuid.MustParse(req.BookingID),
		BookingType: models.UnitType(req.BookingType),
	})
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// VerifyPayment is reachable without a session: the gateway signature is the
// credential.
func (h *Handler) VerifyPayment(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	booking, err := h.Payments.Verify(c.UserContext(), services.VerifyInput{
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
		Signature: req.Signature,
		BookingID: uuid.MustParse(req.BookingID),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":        true,
		"booking_id":     booking.ID,
		"payment_status": booking.PaymentStatus,
	})
}

func (h *Handler) PaymentFailed(c *fiber.Ctx) error {
	var req PaymentFailureRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	booking, err := h.Payments.Fail(c.UserContext(), middleware.CurrentActor(c), services.FailInput{
		BookingID: uuid.MustParse(req.BookingID),
		OrderID:   req.OrderID,
		Reason:    req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":        "Payment not completed, booking not confirmed.",
		"booking_id":     booking.ID,
		"payment_status": booking.PaymentStatus,
	})
}
