package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	api.Get("/locations", h.ListLocations)
	api.Get("/cabins", h.ListCabins)
	api.Get("/hostels", h.ListHostels)
	api.Get("/availability", h.CheckAvailability)
}
