package auth

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/decktrade/decktrade-api/internal/config"
	"github.com/decktrade/decktrade-api/internal/models"
	"github.com/decktrade/decktrade-api/internal/storage"
	"github.com/decktrade/decktrade-api/internal/utils"
)

// AuthService exchanges Telegram Mini App init data for an API token.
type AuthService struct {
	cfg        *config.Config
	store      storage.Store
	jwtService *utils.JWTService
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, store storage.Store) *AuthService {
	return &AuthService{
		cfg:        cfg,
		store:      store,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// TelegramAuthHandler validates initData, upserts the user and returns a JWT.
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	expiration := 24 * time.Hour
	if err := initdata.Validate(payload.InitData, s.cfg.TelegramBotToken, expiration); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Telegram data"})
	}

	data, err := initdata.Parse(payload.InitData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to parse initData"})
	}

	user, err := s.store.UpsertTelegramUser(c.Context(), models.TelegramProfile{
		TelegramID: data.User.ID,
		Username:   data.User.Username,
		FirstName:  data.User.FirstName,
		LastName:   data.User.LastName,
		PhotoURL:   data.User.PhotoURL,
	})
	if err != nil {
		slog.Error("upserting telegram user", "telegram_id", data.User.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save user"})
	}

	jwtToken, err := s.jwtService.GenerateToken(user.ID.String())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate JWT"})
	}

	return c.JSON(fiber.Map{
		"token": jwtToken,
		"user": fiber.Map{
			"id":         user.ID,
			"name":       user.Name,
			"avatar_url": user.AvatarURL,
			"username":   data.User.Username,
		},
	})
}
