package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/anjiri1684/study_space/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")
	api.Get("/uploads/signature", protected, middleware.VendorRequired(), h.GenerateUploadSignature)
}
