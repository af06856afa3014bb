package offer

import (
	"github.com/gofiber/fiber/v3"

	"github.com/decktrade/decktrade-api/internal/middleware"
)

// SetupRoutes registers the offer endpoints.
func (s *OfferService) SetupRoutes(app *fiber.App) {
	pubs := app.Group("/api/publications")
	pubs.Use(middleware.AuthMiddleware(s.jwtService))

	pubs.Post("/:id/offers", s.CreateOffer)
	pubs.Put("/:id/offers/:offerId/status", s.UpdateOfferStatus)

	offers := app.Group("/api/offers")
	offers.Use(middleware.AuthMiddleware(s.jwtService))

	offers.Get("/my", s.GetMyOffers)
}
