package upload

import (
	"github.com/gofiber/fiber/v3"

	"github.com/decktrade/decktrade-api/internal/middleware"
)

// SetupRoutes registers the upload endpoints.
func (s *UploadService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/upload")

	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/params", s.GenerateUploadParams)
	api.Delete("/*", s.DeleteAsset)
}
