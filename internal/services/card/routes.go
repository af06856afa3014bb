package card

import (
	"github.com/gofiber/fiber/v3"

	"github.com/decktrade/decktrade-api/internal/middleware"
)

// SetupRoutes registers the card collection endpoints.
func (s *CardService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/cards")

	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateCard)
	api.Get("/my", s.GetMyCards)
	api.Get("/:id", s.GetCard)
	api.Put("/:id", s.UpdateCard)
}
