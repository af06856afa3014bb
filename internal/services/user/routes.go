package user

import (
	"github.com/gofiber/fiber/v3"

	"github.com/decktrade/decktrade-api/internal/middleware"
)

// SetupRoutes registers the user profile endpoints.
func (s *UserService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/users")

	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/me", s.GetMe)
	api.Put("/me", s.UpdateMe)
	api.Get("/:id", s.GetUser)
}
