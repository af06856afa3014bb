package publication

import (
	"github.com/gofiber/fiber/v3"

	"github.com/decktrade/decktrade-api/internal/middleware"
)

// SetupRoutes registers the publication endpoints.
func (s *PublicationService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/publications")

	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreatePublication)
	api.Get("/", s.GetPublications)
	api.Get("/my", s.GetMyPublications)
	api.Get("/:id", s.GetPublication)
	api.Delete("/:id", s.ClosePublication)
}
