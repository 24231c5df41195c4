package handlers

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	config "github.com/renefichtmueller/ctxpost-sub002/configs"
	"github.com/renefichtmueller/ctxpost-sub002/internal/service"
	"github.com/renefichtmueller/ctxpost-sub002/pkg/utils"
)

// ConnectHandler runs the account-connection OAuth dance. The caller's
// session token travels in the OAuth state parameter, so the callback can
// attribute the new account without a cookie.
type ConnectHandler struct {
	cs  service.ConnectService
	cfg config.Config
}

func NewConnectHandler(cs service.ConnectService, cfg config.Config) *ConnectHandler {
	return &ConnectHandler{cs: cs, cfg: cfg}
}

func (h *ConnectHandler) AddSocialAccount(c *fiber.Ctx) error {
	authURL := h.cs.AuthURL(c.Context(), c.Params("platform"), c.Query("state"))
	if authURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}
	return c.Redirect(authURL)
}

func (h *ConnectHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	platformName := c.Params("platform")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	if err := h.cs.Callback(c.Context(), platformName, code, userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to connect account",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}
