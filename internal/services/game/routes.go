package game

import (
	"github.com/gofiber/fiber/v3"

	"github.com/decktrade/decktrade-api/internal/middleware"
)

// SetupRoutes registers the game catalog endpoints.
func (s *GameService) SetupRoutes(app *fiber.App) {
	games := app.Group("/api/games")
	games.Use(middleware.AuthMiddleware(s.jwtService))

	games.Get("/", s.GetGames)
	games.Post("/", s.CreateGame)
	games.Get("/:id/cardbases", s.GetCardBases)
	games.Post("/:id/cardbases", s.CreateCardBase)

	bases := app.Group("/api/cardbases")
	bases.Use(middleware.AuthMiddleware(s.jwtService))

	bases.Get("/", s.GetCardBases)
	bases.Get("/:id", s.GetCardBase)
}
