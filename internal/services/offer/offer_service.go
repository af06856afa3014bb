package offer

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

// OfferService exposes the negotiation engine over HTTP.
type OfferService struct {
	cfg        *config.Config
	store      storage.Store
	engine     *trading.Engine
	jwtService *utils.JWTService
}

// NewOfferService creates a new OfferService.
func NewOfferService(cfg *config.Config, store storage.Store, engine *trading.Engine) *OfferService {
	return &OfferService{
		cfg:        cfg,
		store:      store,
		engine:     engine,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateOffer places a new offer on a publication.
func (s *OfferService) CreateOffer(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	publicationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid publication ID"})
	}

	var req trading.CreateOfferRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}
	if req.MoneyOffer != nil && *req.MoneyOffer <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Money offer must be positive"})
	}

	view, err := s.engine.CreateOffer(c.Context(), publicationID, userID, req)
	if err != nil {
		return s.tradingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"offer": view})
}

// UpdateOfferStatus accepts or rejects a pending offer.
func (s *OfferService) UpdateOfferStatus(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	publicationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid publication ID"})
	}
	offerID, err := uuid.Parse(c.Params("offerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offer ID"})
	}

	var req trading.UpdateOfferRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	view, err := s.engine.UpdateOffer(c.Context(), publicationID, offerID, userID, req)
	if err != nil {
		return s.tradingError(c, err)
	}

	return c.JSON(fiber.Map{"offer": view})
}

// GetMyOffers lists the caller's offers across all publications.
func (s *OfferService) GetMyOffers(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	offers, err := s.store.OffersByOwner(c.Context(), userID)
	if err != nil {
		slog.Error("listing offers", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load offers"})
	}

	return c.JSON(fiber.Map{"offers": offers, "count": len(offers)})
}

// tradingError maps engine errors onto HTTP statuses.
func (s *OfferService) tradingError(c fiber.Ctx, err error) error {
	var missing *trading.MissingCardsError

	switch {
	case errors.Is(err, trading.ErrPublicationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Publication not found"})
	case errors.Is(err, trading.ErrOfferNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Offer not found"})
	case errors.Is(err, trading.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	case errors.Is(err, trading.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the publication owner may do this"})
	case errors.Is(err, trading.ErrCardNotOwned):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only stake your own cards"})
	case errors.Is(err, trading.ErrPublicationClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Publication is closed"})
	case errors.Is(err, trading.ErrOfferClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Offer is already closed"})
	case errors.Is(err, trading.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offer status"})
	case errors.Is(err, trading.ErrEmptyOffer):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Offer must include money or cards"})
	case errors.As(err, &missing):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "Some staked cards do not exist",
			"card_ids": missing.IDs,
		})
	default:
		slog.Error("trading operation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Trade operation failed"})
	}
}
