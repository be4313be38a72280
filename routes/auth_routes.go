package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", protected, h.Me)

	api.Post("/devices", protected, h.RegisterDevice)
}
