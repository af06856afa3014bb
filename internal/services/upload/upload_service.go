package upload

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/config"
	"github.com/decktrade/decktrade-api/internal/utils"
)

// UploadService issues signed Cloudinary upload parameters for card images
// and removes assets that are no longer referenced.
type UploadService struct {
	cfg        *config.Config
	cld        *cloudinary.Cloudinary
	jwtService *utils.JWTService
}

// NewUploadService creates a new UploadService.
func NewUploadService(cfg *config.Config) (*UploadService, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryConfig.CloudName,
		cfg.CloudinaryConfig.APIKey,
		cfg.CloudinaryConfig.APISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("initializing cloudinary: %w", err)
	}

	return &UploadService{
		cfg:        cfg,
		cld:        cld,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}, nil
}

// GenerateSignature signs the sorted parameter string with the API secret.
func (s *UploadService) GenerateSignature(params map[string]string) string {
	var keys []string
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var signParts []string
	for _, k := range keys {
		signParts = append(signParts, fmt.Sprintf("%s=%s", k, params[k]))
	}
	signatureString := strings.Join(signParts, "&")
	signatureString += s.cfg.CloudinaryConfig.APISecret

	h := sha1.New()
	h.Write([]byte(signatureString))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateUploadParams returns signed parameters for a direct browser upload.
func (s *UploadService) GenerateUploadParams(c fiber.Ctx) error {
	cardID := c.Query("card_id")
	if cardID == "" {
		cardID = uuid.New().String()
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	params := map[string]string{
		"timestamp": timestamp,
		"folder":    s.cfg.CloudinaryConfig.UploadFolder,
	}
	signature := s.GenerateSignature(params)

	return c.JSON(fiber.Map{
		"timestamp":  timestamp,
		"signature":  signature,
		"api_key":    s.cfg.CloudinaryConfig.APIKey,
		"cloud_name": s.cfg.CloudinaryConfig.CloudName,
		"folder":     s.cfg.CloudinaryConfig.UploadFolder,
		"card_id":    cardID,
	})
}

// DeleteAsset removes an uploaded image by its public ID.
func (s *UploadService) DeleteAsset(c fiber.Ctx) error {
	publicID := c.Params("*")
	if publicID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing public ID"})
	}

	res, err := s.cld.Upload.Destroy(c.Context(), uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		slog.Error("destroying cloudinary asset", "public_id", publicID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete asset"})
	}
	if res.Result != "ok" && res.Result != "not found" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete asset"})
	}

	return c.JSON(fiber.Map{"result": res.Result})
}
