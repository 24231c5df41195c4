package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/renefichtmueller/ctxpost-sub002/internal/service"
	"github.com/renefichtmueller/ctxpost-sub002/internal/transfer"
)

const (
	insightKeepAlive  = 15 * time.Second
	insightMaxRuntime = 10 * time.Minute
)

type InsightHandler struct {
	gen service.InsightGenerator
}

func NewInsightHandler(gen service.InsightGenerator) *InsightHandler {
	return &InsightHandler{gen: gen}
}

// Stream runs a generation and streams its events as SSE. Generations can
// run for minutes, so keep-alive comments go out between events; a failed
// flush means the client is gone and cancels the generator context. Post
// state already persisted is untouched by a cancelled stream.
func (h *InsightHandler) Stream(c *fiber.Ctx) error {
	if h.gen == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "Insight generation is not configured",
		})
	}

	var req transfer.InsightRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Prompt cannot be empty",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), insightMaxRuntime)

	events, err := h.gen.Generate(ctx, req.Prompt, service.InsightConfig{
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		cancel()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		keepAlive := time.NewTicker(insightKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", data)
				if err := w.Flush(); err != nil {
					// Client disconnected; cancel() stops the generator.
					return
				}
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}
