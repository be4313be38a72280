package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/anjiri1684/study_space/middleware"
	"github.com/gofiber/fiber/v2"
)

// Setup mounts every route group under /api/v1.
func Setup(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	protected := middleware.Protected(jwtSecret)

	PublicRoutes(app, h)
	AuthRoutes(app, h, protected)
	BookingRoutes(app, h, protected)
	PaymentRoutes(app, h, protected)
	PartnerRoutes(app, h, protected)
	VendorRoutes(app, h, protected)
	AdminRoutes(app, h, protected)
	ReportRoutes(app, h, protected)
	UploadRoutes(app, h, protected)
	WebSocketRoutes(app, h)
}
