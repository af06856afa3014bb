package game

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

// GameService manages the game catalog and its card bases.
type GameService struct {
	cfg        *config.Config
	store      storage.Store
	jwtService *utils.JWTService
}

// NewGameService creates a new GameService.
func NewGameService(cfg *config.Config, store storage.Store) *GameService {
	return &GameService{
		cfg:        cfg,
		store:      store,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetGames lists all games.
func (s *GameService) GetGames(c fiber.Ctx) error {
	games, err := s.store.Games(c.Context())
	if err != nil {
		slog.Error("listing games", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load games"})
	}
	return c.JSON(fiber.Map{"games": games, "count": len(games)})
}

// CreateGame registers a new game.
func (s *GameService) CreateGame(c fiber.Ctx) error {
	var payload struct {
		Name string `json:"name"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}
	if payload.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	game := models.Game{
		ID:        uuid.New(),
		Name:      payload.Name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.CreateGame(c.Context(), game); err != nil {
		slog.Error("creating game", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create game"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"game": game})
}

// GetCardBases lists card bases, optionally filtered by game.
func (s *GameService) GetCardBases(c fiber.Ctx) error {
	var gameID *uuid.UUID
	if raw := c.Params("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid game ID"})
		}
		gameID = &id
	}

	bases, err := s.store.CardBases(c.Context(), gameID)
	if err != nil {
		slog.Error("listing card bases", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load card bases"})
	}
	return c.JSON(fiber.Map{"card_bases": bases, "count": len(bases)})
}

// GetCardBase returns one card base with its game.
func (s *GameService) GetCardBase(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid card base ID"})
	}

	base, err := s.store.CardBaseByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrCardBaseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Card base not found"})
		}
		slog.Error("loading card base", "card_base_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load card base"})
	}
	return c.JSON(fiber.Map{"card_base": base})
}

// CreateCardBase registers a new card base under a game.
func (s *GameService) CreateCardBase(c fiber.Ctx) error {
	gameID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid game ID"})
	}

	var payload struct {
		Name     string `json:"name"`
		ImageURL string `json:"image_url"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}
	if payload.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	base := models.CardBase{
		ID:        uuid.New(),
		GameID:    gameID,
		Name:      payload.Name,
		ImageURL:  payload.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.CreateCardBase(c.Context(), base); err != nil {
		slog.Error("creating card base", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create card base"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"card_base": base})
}
