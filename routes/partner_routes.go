package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/gofiber/fiber/v2"
)

func PartnerRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	partners := api.Group("/partners", protected)
	partners.Post("/apply", h.ApplyAsPartner)
	partners.Get("/me", h.MyPartnerAccount)
}
