package handler

import (
	"legal-assistant-be/internal/pkg/logger"
	internalWS "legal-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatEventsHandler streams controller events to browsers over a websocket.
// Clients load the current transcript through GET /chat/v1/history first and
// then apply events in seq order.
type ChatEventsHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChatEventsHandler(hub *internalWS.Hub, log logger.ILogger) *ChatEventsHandler {
	return &ChatEventsHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *ChatEventsHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/chat/v1/ws", h.ServeWs)
}

// ServeWs upgrades the request and blocks until the peer disconnects.
func (h *ChatEventsHandler) ServeWs(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatEventsHandler", "Starting WebSocket session", map[string]interface{}{"remote": conn.RemoteAddr().String()})
			internalWS.ServeWs(h.hub, conn)
			h.logger.Info("ChatEventsHandler", "WebSocket session ended", map[string]interface{}{"remote": conn.RemoteAddr().String()})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
