package card

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/config"
	"github.com/decktrade/decktrade-api/internal/models"
	"github.com/decktrade/decktrade-api/internal/storage"
	"github.com/decktrade/decktrade-api/internal/utils"
)

// CardService manages the cards users hold in their collections.
type CardService struct {
	cfg        *config.Config
	store      storage.Store
	jwtService *utils.JWTService
}

// NewCardService creates a new CardService.
func NewCardService(cfg *config.Config, store storage.Store) *CardService {
	return &CardService{
		cfg:        cfg,
		store:      store,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateCard adds a card to the caller's collection.
func (s *CardService) CreateCard(c fiber.Ctx) error {
	ownerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var payload struct {
		CardBaseID string `json:"card_base_id"`
		Status     int    `json:"status"`
		ImageURL   string `json:"image_url"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	cardBaseID, err := uuid.Parse(payload.CardBaseID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid card base ID"})
	}
	if payload.Status < models.CardStatusMin || payload.Status > models.CardStatusMax {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Card status must be between 1 and 10"})
	}

	if _, err := s.store.CardBaseByID(c.Context(), cardBaseID); err != nil {
		if errors.Is(err, models.ErrCardBaseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Card base not found"})
		}
		slog.Error("loading card base", "card_base_id", cardBaseID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check card base"})
	}

	card := models.Card{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		CardBaseID: cardBaseID,
		Status:     payload.Status,
		ImageURL:   payload.ImageURL,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.store.CreateCard(c.Context(), card); err != nil {
		slog.Error("creating card", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create card"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"card": card})
}

// GetMyCards lists the caller's cards.
func (s *CardService) GetMyCards(c fiber.Ctx) error {
	ownerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	cards, err := s.store.CardsByOwner(c.Context(), ownerID)
	if err != nil {
		slog.Error("listing cards", "owner_id", ownerID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load cards"})
	}

	return c.JSON(fiber.Map{"cards": cards, "count": len(cards)})
}

// GetCard returns one card.
func (s *CardService) GetCard(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid card ID"})
	}

	card, err := s.store.CardByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrCardNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Card not found"})
		}
		slog.Error("loading card", "card_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load card"})
	}

	return c.JSON(fiber.Map{"card": card})
}

// UpdateCard updates the status or image of one of the caller's cards.
func (s *CardService) UpdateCard(c fiber.Ctx) error {
	ownerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid card ID"})
	}

	var payload struct {
		Status   int    `json:"status"`
		ImageURL string `json:"image_url"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}
	if payload.Status < models.CardStatusMin || payload.Status > models.CardStatusMax {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Card status must be between 1 and 10"})
	}

	card, err := s.store.CardByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrCardNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Card not found"})
		}
		slog.Error("loading card", "card_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load card"})
	}
	if card.OwnerID != ownerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this card"})
	}

	card.Status = payload.Status
	if payload.ImageURL != "" {
		card.ImageURL = payload.ImageURL
	}
	if err := s.store.UpdateCard(c.Context(), *card); err != nil {
		slog.Error("updating card", "card_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update card"})
	}

	return c.JSON(fiber.Map{"card": card})
}
