package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	payments := api.Group("/payments")
	payments.Post("/create-order", protected, h.CreatePaymentOrder)
	payments.Post("/verify", h.VerifyPayment)
	payments.Post("/failure", protected, h.PaymentFailed)
}
