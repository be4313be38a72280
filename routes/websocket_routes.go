package routes

import (
	"github.com/anjiri1684/study_space/handlers"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func WebSocketRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	api.Use("/ws", handlers.UpgradeRequired)
	api.Get("/ws", websocket.New(h.ServeWs))
}
