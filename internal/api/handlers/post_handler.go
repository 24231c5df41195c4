package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/renefichtmueller/ctxpost-sub002/internal/cache"
	"github.com/renefichtmueller/ctxpost-sub002/internal/queue"
	"github.com/renefichtmueller/ctxpost-sub002/internal/service"
	"github.com/renefichtmueller/ctxpost-sub002/internal/transfer"
)

// viewStore is the slice of the view cache the handler needs. Satisfied by
// *cache.ViewCache, including a nil one.
type viewStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type PostHandler struct {
	s           service.PostService
	lc          service.LifecycleService
	views       viewStore
	AsynqClient *asynq.Client
}

func NewPostHandler(s service.PostService, lc service.LifecycleService, views *cache.ViewCache, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: s, lc: lc, views: views, AsynqClient: asynqClient}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	pc := &transfer.PostCreation{
		Content:          c.FormValue("content"),
		Title:            c.FormValue("title"),
		ContentType:      c.FormValue("content_type"),
		ScheduledTime:    c.FormValue("scheduled_time"),
		SelectedAccounts: c.FormValue("selected_accounts"),
	}

	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}
	files := form.File["files"]

	postID, delay, err := h.s.CreatePost(c.Context(), userID, pc, files)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if pc.ScheduledTime != "" {
		err = queue.EnqueuePublish(h.AsynqClient, queue.PublishPostPayload{PostID: postID}, delay)
		if err != nil {
			slog.Error(err.Error())
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"error": "Post saved but scheduling failed",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post created successfully",
		"post_id": postID,
	})
}

func (h *PostHandler) ReschedulePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.RescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	delay, err := h.lc.Reschedule(c.Context(), req.PostID, userID, req.ScheduledTime)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err = queue.EnqueuePublish(h.AsynqClient, queue.PublishPostPayload{PostID: req.PostID}, delay)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"error": "Rescheduled but dispatch enqueue failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

func (h *PostHandler) MarkEvergreen(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.EvergreenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.s.MarkEvergreen(c.Context(), userID, req.PostID, req.Evergreen); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postID), userID)
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"error": "Unable to get post",
			})
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	key := cache.QueueKey(userID)
	if cached, err := h.views.Get(c.Context(), key); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).SendString(cached)
	}

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	body, err := json.Marshal(posts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}
	if err := h.views.Set(c.Context(), key, body, cache.ViewTTL); err != nil {
		slog.Info(err.Error())
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(body)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(postID))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": "Unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
