package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/anjiri1684/study_space/middleware"
	"github.com/gofiber/fiber/v2"
)

func ReportRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	reports := api.Group("/reports", protected, middleware.VendorRequired())
	reports.Get("/occupancy", h.OccupancyReport)
	reports.Get("/revenue", h.RevenueReport)
	reports.Get("/payouts", h.PayoutReport)
	reports.Get("/payouts.xlsx", h.PayoutReportXLSX)
}
