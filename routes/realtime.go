package routes

import (
	"foodbank-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SetupRealtimeRoutes настраивает WebSocket маршрут событий инвентаря
func SetupRealtimeRoutes(app *fiber.App, hub *services.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// GET /ws?token= - события inventory.*
	app.Get("/ws", websocket.New(hub.HandleWebSocket))
}
