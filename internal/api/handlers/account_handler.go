package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
)

type AccountHandler struct {
	ar repository.SocialAccountRepository
}

func NewAccountHandler(ar repository.SocialAccountRepository) *AccountHandler {
	return &AccountHandler{ar: ar}
}

func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.ar.ListByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

// RemoveAccount deactivates a connected account. History referencing it is
// kept; the account just stops being a targeting option.
func (h *AccountHandler) RemoveAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("id", 0)

	owned, err := h.ar.CheckByUserID(c.Context(), int64(accountID), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to check account",
		})
	}
	if !owned {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Account doesn't exist",
		})
	}

	if err := h.ar.Deactivate(c.Context(), int64(accountID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
