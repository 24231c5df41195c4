package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/renefichtmueller/ctxpost-sub002/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// statusFor maps service-level errors to HTTP status codes so handlers stay
// a thin translation layer.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidProtocol):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrIllegalTransition):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrRateLimited):
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}
