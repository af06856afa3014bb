package auth

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers the auth endpoints.
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/auth")

	api.Post("/telegram", s.TelegramAuthHandler)
}
