package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/anjiri1684/study_space/middleware"
	"github.com/gofiber/fiber/v2"
)

func VendorRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	vendor := api.Group("/vendor", protected, middleware.VendorRequired())
	vendor.Get("/inventory", h.MyInventory)
	vendor.Post("/cabins", h.CreateCabin)
	vendor.Post("/cabins/:id/seats", h.AddSeats)
	vendor.Post("/hostels", h.CreateHostel)
	vendor.Post("/hostels/:id/rooms", h.AddRoom)
	vendor.Patch("/units/:type/:id/price", h.UpdateUnitPrice)
	vendor.Patch("/units/:type/:id/active", h.SetUnitActive)
	vendor.Patch("/:kind/:id/booking-active", h.SetBookingActive)
}
