package user

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/config"
	"github.com/decktrade/decktrade-api/internal/storage"
	"github.com/decktrade/decktrade-api/internal/trading"
	"github.com/decktrade/decktrade-api/internal/utils"
)

// UserService serves the authenticated user's profile.
type UserService struct {
	cfg        *config.Config
	store      storage.Store
	jwtService *utils.JWTService
}

// NewUserService creates a new UserService.
func NewUserService(cfg *config.Config, store storage.Store) *UserService {
	return &UserService{
		cfg:        cfg,
		store:      store,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetMe returns the current user's profile.
func (s *UserService) GetMe(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	user, err := s.store.UserByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, trading.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		slog.Error("loading user", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load user"})
	}

	return c.JSON(fiber.Map{"user": user})
}

// GetUser returns another user's public profile.
func (s *UserService) GetUser(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	user, err := s.store.UserByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, trading.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		slog.Error("loading user", "user_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load user"})
	}

	return c.JSON(fiber.Map{"user": fiber.Map{
		"id":         user.ID,
		"name":       user.Name,
		"avatar_url": user.AvatarURL,
	}})
}

// UpdateMe updates the current user's profile fields.
func (s *UserService) UpdateMe(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var payload struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}
	if payload.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	current, err := s.store.UserByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, trading.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		slog.Error("loading user", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load user"})
	}

	current.Name = payload.Name
	current.Email = payload.Email
	current.AvatarURL = payload.AvatarURL

	updated, err := s.store.UpdateUser(c.Context(), *current)
	if err != nil {
		slog.Error("updating user", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{"user": updated})
}
