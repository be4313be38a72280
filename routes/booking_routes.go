package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", protected)
	booking.Post("", h.CreateBooking)
	booking.Get("", h.ListBookings)
	booking.Get("/:id", h.GetBooking)
	booking.Post("/:id/cancel", h.CancelBooking)
	booking.Get("/:id/receipt", h.DownloadReceipt)
}
