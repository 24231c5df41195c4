package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/renefichtmueller/ctxpost-sub002/configs"
	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
	"github.com/renefichtmueller/ctxpost-sub002/internal/service"
	"github.com/renefichtmueller/ctxpost-sub002/pkg/utils"
)

type CredentialHandler struct {
	cfg      config.Config
	cr       repository.PlatformCredentialRepository
	resolver service.CredentialResolver
}

func NewCredentialHandler(cfg config.Config, cr repository.PlatformCredentialRepository, resolver service.CredentialResolver) *CredentialHandler {
	return &CredentialHandler{cfg: cfg, cr: cr, resolver: resolver}
}

type credentialUpdate struct {
	Platform     string `json:"platform"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// UpdateCredentials stores a per-user credential pair, encrypting the secret
// at rest when an encryption key is configured.
func (h *CredentialHandler) UpdateCredentials(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req credentialUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	if req.Platform == "" || req.ClientID == "" || req.ClientSecret == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "platform, client_id and client_secret are required",
		})
	}

	secret := req.ClientSecret
	if h.cfg.EncryptionKey != "" {
		encrypted, err := utils.Encrypt([]byte(secret), []byte(h.cfg.EncryptionKey))
		if err != nil {
			slog.Error(err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to store credentials",
			})
		}
		secret = encrypted
	}

	cred := models.PlatformCredential{
		UserID:       userID,
		Platform:     req.Platform,
		ClientID:     req.ClientID,
		ClientSecret: secret,
	}
	if err := h.cr.Upsert(c.Context(), &cred); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to store credentials",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

// CredentialStatus reports whether usable credentials resolve for the
// caller on a platform. The secret itself never leaves the server.
func (h *CredentialHandler) CredentialStatus(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platformName := c.Params("platform")

	creds := h.resolver.Resolve(c.Context(), userID, platformName)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"platform":   platformName,
		"configured": !creds.Empty(),
	})
}
