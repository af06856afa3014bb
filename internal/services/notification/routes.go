package notification

import (
	"github.com/gofiber/fiber/v3"

	"github.com/decktrade/decktrade-api/internal/middleware"
)

// SetupRoutes registers the notification endpoints.
func (s *NotificationService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/notifications")

	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.GetNotifications)
	api.Put("/:id/read", s.MarkRead)
}
