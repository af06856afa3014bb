package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/decktrade/decktrade-api/internal/config"
	"github.com/decktrade/decktrade-api/internal/notifier"
	"github.com/decktrade/decktrade-api/internal/services/auth"
	"github.com/decktrade/decktrade-api/internal/services/card"
	"github.com/decktrade/decktrade-api/internal/services/game"
	"github.com/decktrade/decktrade-api/internal/services/notification"
	"github.com/decktrade/decktrade-api/internal/services/offer"
	"github.com/decktrade/decktrade-api/internal/services/publication"
	"github.com/decktrade/decktrade-api/internal/services/upload"
	"github.com/decktrade/decktrade-api/internal/services/user"
	"github.com/decktrade/decktrade-api/internal/storage"
	"github.com/decktrade/decktrade-api/internal/trading"
	"github.com/decktrade/decktrade-api/internal/utils"
	"github.com/decktrade/decktrade-api/internal/websocket"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("opening storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())

	wsManager := websocket.NewManager()
	defer wsManager.Shutdown()

	engine := trading.New(store, store, store, store, notifier.New(store, wsManager))

	app := fiber.New(fiber.Config{
		AppName:      "DeckTrade API",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	auth.NewAuthService(cfg, store).SetupRoutes(app)
	user.NewUserService(cfg, store).SetupRoutes(app)
	game.NewGameService(cfg, store).SetupRoutes(app)
	card.NewCardService(cfg, store).SetupRoutes(app)
	publication.NewPublicationService(cfg, store, engine).SetupRoutes(app)
	offer.NewOfferService(cfg, store, engine).SetupRoutes(app)
	notification.NewNotificationService(cfg, store).SetupRoutes(app)

	uploadService, err := upload.NewUploadService(cfg)
	if err != nil {
		slog.Error("initializing upload service", "error", err)
		os.Exit(1)
	}
	uploadService.SetupRoutes(app)

	// The websocket feed runs on its own net/http listener, the REST app is
	// fasthttp based.
	wsServer := &http.Server{
		Addr:    cfg.WSListenAddr,
		Handler: websocket.NewHandler(wsManager, utils.NewJWTService(cfg.JWTSecret)),
	}
	go func() {
		slog.Info("websocket listener started", "addr", cfg.WSListenAddr)
		if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("websocket listener failed", "error", err)
		}
	}()

	go func() {
		slog.Info("api listener started", "addr", cfg.ListenAddr)
		if err := app.Listen(cfg.ListenAddr); err != nil {
			slog.Error("api listener failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("api shutdown failed", "error", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("websocket shutdown failed", "error", err)
	}
}

// errorHandler renders unhandled Fiber errors as JSON.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
