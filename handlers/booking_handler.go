package handlers

import (
	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/middleware"
	"github.com/anjiri1684/study_space/models"
	"github.com/anjiri1684/study_space/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	BookingType     string  `json:"booking_type" validate:"required,oneof=seat bed"`
	InventoryUnitID string  `json:"inventory_unit_id" validate:"required,uuid"`
	StartDate       string  `json:"start_date" validate:"required"`
	EndDate         string  `json:"end_date,omitempty"`
	BookingDuration string  `json:"booking_duration" validate:"required,oneof=daily weekly monthly"`
	DurationCount   int     `json:"duration_count" validate:"required,min=1,max=366"`
	TotalPrice      float64 `json:"total_price" validate:"required,gt=0"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// CheckAvailability answers GET /availability. Either end_date or
// booking_duration with duration_count describes the range.
func (h *Handler) CheckAvailability(c *fiber.Ctx) error {
	unitID, err := uuid.Parse(c.Query("inventory_unit_id"))
	if err != nil {
		return apperror.Validation("inventory_unit_id is required")
	}
	start, err := services.ParseDate(c.Query("start_date"))
	if err != nil {
		return err
	}
	q := services.AvailabilityQuery{
		UnitType: models.UnitType(c.Query("booking_type", string(models.UnitSeat))),
		UnitID:   unitID,
		Start:    start,
		Duration: models.Duration(c.Query("booking_duration")),
		Count:    c.QueryInt("duration_count", 1),
	}
	if raw := c.Query("end_date"); raw != "" {
		end, err := services.ParseDate(raw)
		if err != nil {
			return err
		}
		q.End = &end
	}
	if !q.UnitType.Valid() {
		return apperror.Validation("booking_type must be seat or bed")
	}

	res, err := h.Bookings.CheckAvailability(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	start, err := services.ParseDate(req.StartDate)
	if err != nil {
		return err
	}
	in := services.CreateBookingInput{
		UnitType:      models.UnitType(req.BookingType),
		UnitID:        uuid.MustParse(req.InventoryUnitID),
		Start:         start,
		Duration:      models.Duration(req.BookingDuration),
		Count:         req.DurationCount,
		TotalPrice:    req.TotalPrice,
		PaymentMethod: req.PaymentMethod,
	}
	if req.EndDate != "" {
		end, err := services.ParseDate(req.EndDate)
		if err != nil {
			return err
		}
		in.End = &end
	}

	booking, err := h.Bookings.CreateBooking(c.UserContext(), middleware.CurrentActor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking held, complete payment before the hold expires.",
		"booking": booking,
	})
}

func (h *Handler) GetBooking(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.Bookings.GetBooking(c.UserContext(), middleware.CurrentActor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

func (h *Handler) ListBookings(c *fiber.Ctx) error {
	f := services.BookingFilter{
		Status:   models.PaymentStatus(c.Query("status")),
		UnitType: models.UnitType(c.Query("booking_type")),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}
	page, err := h.Bookings.ListBookings(c.UserContext(), middleware.CurrentActor(c), f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handler) CancelBooking(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req CancelBookingRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	booking, err := h.Bookings.CancelBooking(c.UserContext(), middleware.CurrentActor(c), id, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Booking cancelled", "booking": booking})
}

func (h *Handler) DownloadReceipt(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	pdf, filename, err := h.Receipts.Receipt(c.UserContext(), middleware.CurrentActor(c), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
