package publication

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/config"
	"github.com/decktrade/decktrade-api/internal/models"
	"github.com/decktrade/decktrade-api/internal/storage"
	"github.com/decktrade/decktrade-api/internal/trading"
	"github.com/decktrade/decktrade-api/internal/utils"
)

// PublicationService manages trade listings.
type PublicationService struct {
	cfg        *config.Config
	store      storage.Store
	engine     *trading.Engine
	jwtService *utils.JWTService
}

// NewPublicationService creates a new PublicationService.
func NewPublicationService(cfg *config.Config, store storage.Store, engine *trading.Engine) *PublicationService {
	return &PublicationService{
		cfg:        cfg,
		store:      store,
		engine:     engine,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreatePublication lists one of the caller's cards for trade.
func (s *PublicationService) CreatePublication(c fiber.Ctx) error {
	ownerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var payload struct {
		CardID          string   `json:"card_id"`
		ValueMoney      *float64 `json:"value_money"`
		CardExchangeIDs []string `json:"card_exchange_ids"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	cardID, err := uuid.Parse(payload.CardID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid card ID"})
	}
	if payload.ValueMoney != nil && *payload.ValueMoney <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Money value must be positive"})
	}
	if payload.ValueMoney == nil && len(payload.CardExchangeIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Publication must ask for money or cards"})
	}

	exchangeIDs := make([]uuid.UUID, 0, len(payload.CardExchangeIDs))
	for _, raw := range payload.CardExchangeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid exchange card base ID"})
		}
		exchangeIDs = append(exchangeIDs, id)
	}

	card, err := s.store.CardByID(c.Context(), cardID)
	if err != nil {
		if errors.Is(err, models.ErrCardNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Card not found"})
		}
		slog.Error("loading card", "card_id", cardID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load card"})
	}
	if card.OwnerID != ownerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this card"})
	}

	listed, err := s.store.HasOpenPublicationForCard(c.Context(), cardID)
	if err != nil {
		slog.Error("checking open publications", "card_id", cardID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check card"})
	}
	if listed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Card is already listed in an open publication"})
	}

	pub := models.Publication{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		CardID:          cardID,
		ValueMoney:      payload.ValueMoney,
		CardExchangeIDs: exchangeIDs,
		Status:          models.PublicationOpen,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := s.store.CreatePublication(c.Context(), pub); err != nil {
		slog.Error("creating publication", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create publication"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"publication": pub})
}

// GetPublications lists publications with optional owner/status filters.
func (s *PublicationService) GetPublications(c fiber.Ctx) error {
	filter := models.PublicationFilter{
		Status: c.Query("status"),
		Limit:  fiber.Query(c, "limit", 20),
		Offset: fiber.Query(c, "offset", 0),
	}

	if raw := c.Query("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid owner ID"})
		}
		filter.OwnerID = &ownerID
	}
	if filter.Status != "" && filter.Status != models.PublicationOpen && filter.Status != models.PublicationClosed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
	}

	pubs, err := s.store.Publications(c.Context(), filter)
	if err != nil {
		slog.Error("listing publications", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load publications"})
	}

	return c.JSON(fiber.Map{"publications": pubs, "count": len(pubs)})
}

// GetMyPublications lists the caller's publications.
func (s *PublicationService) GetMyPublications(c fiber.Ctx) error {
	ownerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	pubs, err := s.store.Publications(c.Context(), models.PublicationFilter{OwnerID: &ownerID})
	if err != nil {
		slog.Error("listing publications", "owner_id", ownerID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load publications"})
	}

	return c.JSON(fiber.Map{"publications": pubs, "count": len(pubs)})
}

// GetPublication returns one publication with its card, owner and offers.
func (s *PublicationService) GetPublication(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid publication ID"})
	}

	agg, err := s.store.Aggregate(c.Context(), id)
	if err != nil {
		if errors.Is(err, trading.ErrPublicationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Publication not found"})
		}
		slog.Error("loading publication", "publication_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load publication"})
	}

	offers := make([]fiber.Map, 0, len(agg.Offers))
	for _, entry := range agg.Offers {
		offers = append(offers, fiber.Map{
			"offer":      entry.Offer,
			"owner_name": entry.Owner.Name,
			"cards":      entry.Cards,
		})
	}

	return c.JSON(fiber.Map{
		"publication": agg.Publication,
		"owner":       agg.Owner,
		"card":        agg.Card,
		"offers":      offers,
	})
}

// ClosePublication withdraws an open publication without accepting an offer.
// The engine runs it under the publication lock and rejects any pending
// offers in the same commit.
func (s *PublicationService) ClosePublication(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid publication ID"})
	}

	pub, err := s.engine.ClosePublication(c.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, trading.ErrPublicationNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Publication not found"})
		case errors.Is(err, trading.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		case errors.Is(err, trading.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this publication"})
		case errors.Is(err, trading.ErrPublicationClosed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Publication is already closed"})
		default:
			slog.Error("closing publication", "publication_id", id, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to close publication"})
		}
	}

	return c.JSON(fiber.Map{"publication": pub})
}
