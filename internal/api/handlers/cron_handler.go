package handlers

import (
	"github.com/gofiber/fiber/v2"
	job "github.com/renefichtmueller/ctxpost-sub002/internal/jobs"
	"github.com/renefichtmueller/ctxpost-sub002/internal/service"
)

// CronHandler exposes the periodic jobs to an external invoker. The same
// logic also runs on the internal cron loop; this is the alternative entry
// point for deployments that prefer an outside trigger.
type CronHandler struct {
	rs     service.RecycleService
	dueJob *job.DuePostJob
}

func NewCronHandler(rs service.RecycleService, dueJob *job.DuePostJob) *CronHandler {
	return &CronHandler{rs: rs, dueJob: dueJob}
}

func (h *CronHandler) RecycleEvergreen(c *fiber.Ctx) error {
	count, err := h.rs.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"recycled": count,
	})
}

func (h *CronHandler) SweepDuePosts(c *fiber.Ctx) error {
	h.dueJob.Run()
	return c.SendStatus(fiber.StatusOK)
}
