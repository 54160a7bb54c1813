package server

import (
	"log/slog"

	"devhub/internal/authz"
	"devhub/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles GET /api/ws, the per-user notification socket.
// Clients authenticate with a ticket from POST /api/ws/ticket.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		id, ok := conn.Locals(localIdentity).(authz.Identity)
		if !ok || !id.Authenticated() || s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(id.AccountID, conn)
		if err != nil {
			middleware.Logger.Warn("failed to register notification socket",
				slog.Uint64("user_id", uint64(id.AccountID)),
				slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
