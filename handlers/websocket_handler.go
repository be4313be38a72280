package handlers

import (
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/study_space/websocket"
)

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// UpgradeRequired rejects plain HTTP requests on the websocket route.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocketcontrib.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ServeWs authenticates the socket with a first {"type":"auth","token":...}
// message and then keeps it registered for booking status pushes until the
// client goes away.
func (h *Handler) ServeWs(c *websocketcontrib.Conn) {
	var auth wsAuthMessage
	if err := c.ReadJSON(&auth); err != nil || auth.Type != "auth" {
		h.Log.WithError(err).Warn("WebSocket auth failed: invalid or missing auth message")
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		_ = c.Close()
		return
	}
	actor, err := h.Auth.ParseToken(auth.Token)
	if err != nil {
		h.Log.WithError(err).Warn("WebSocket auth failed: invalid token")
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		_ = c.Close()
		return
	}

	// after Join only the hub writes to c
	_ = c.WriteJSON(fiber.Map{"type": "auth.ok"})
	client := &websocket.Client{UserID: actor.UserID, Conn: c}
	if h.Hub.Connected(actor.UserID) {
		h.Log.WithField("user_id", actor.UserID).Info("WebSocket client reconnected, closing previous connection")
	}
	if !h.Hub.Join(client) {
		_ = c.Close()
		return
	}
	h.Log.WithField("user_id", actor.UserID).Info("WebSocket client authenticated and registered")
	defer func() {
		h.Hub.Leave(client)
		_ = c.Close()
	}()

	for {
		// inbound frames carry nothing; reading detects the close
		if _, _, err := c.ReadMessage(); err != nil {
			if !websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				h.Log.WithError(err).WithField("user_id", actor.UserID).Debug("WebSocket read error")
			}
			return
		}
	}
}
