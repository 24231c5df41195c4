package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/renefichtmueller/ctxpost-sub002/internal/service"
	"github.com/renefichtmueller/ctxpost-sub002/internal/transfer"
)

type ShortLinkHandler struct {
	s             service.ShortLinkService
	shortLinkBase string
}

func NewShortLinkHandler(s service.ShortLinkService, shortLinkBase string) *ShortLinkHandler {
	return &ShortLinkHandler{s: s, shortLinkBase: shortLinkBase}
}

func (h *ShortLinkHandler) CreateShortLink(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ShortLinkCreation
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	link, err := h.s.Create(c.Context(), userID, req.OriginalURL, req.UTMSource, req.UTMMedium, req.UTMCampaign)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"short_code": link.ShortCode,
		"short_url":  fmt.Sprintf("%s/%s", h.shortLinkBase, link.ShortCode),
	})
}

// Redirect handles GET /s/:code.
func (h *ShortLinkHandler) Redirect(c *fiber.Ctx) error {
	code := c.Params("code")

	destination, err := h.s.Resolve(c.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Unknown short link",
			})
		}
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Redirect(destination, fiber.StatusFound)
}
