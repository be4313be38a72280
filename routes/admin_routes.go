package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/anjiri1684/study_space/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", protected, middleware.AdminRequired())
	admin.Get("/partners", h.ListPartners)
	admin.Patch("/partners/:id/status", h.UpdatePartnerStatus)
	admin.Put("/partners/:id/commission", h.UpdatePartnerCommission)

	admin.Post("/locations/states", h.CreateState)
	admin.Post("/locations/states/:id/cities", h.CreateCity)
	admin.Post("/locations/cities/:id/areas", h.CreateArea)
}
