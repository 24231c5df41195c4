package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
)

// transitions is the post status graph. A status change is legal only when
// the target appears in the source's edge list.
var transitions = map[string][]string{
	models.PostStatusDraft:         {models.PostStatusPendingReview, models.PostStatusScheduled},
	models.PostStatusPendingReview: {models.PostStatusScheduled},
	models.PostStatusScheduled:     {models.PostStatusPublishing},
	models.PostStatusPublishing:    {models.PostStatusPublished, models.PostStatusFailed},
	models.PostStatusPublished:     {},
	models.PostStatusFailed:        {},
}

// CanTransition reports whether from -> to is an edge of the status graph.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// reschedulable are the statuses a post may be rescheduled in. A FAILED post
// re-enters the lifecycle through a fresh scheduling cycle, never by
// flipping its status back.
var reschedulable = map[string]bool{
	models.PostStatusDraft:         true,
	models.PostStatusPendingReview: true,
	models.PostStatusScheduled:     true,
}

// ViewInvalidator drops cached calendar/queue/dashboard views after a post
// changes in a way those views render.
type ViewInvalidator interface {
	InvalidatePostViews(ctx context.Context, userID int64) error
}

type LifecycleService interface {
	// Reschedule sets a new scheduled time on a post the caller owns and
	// returns the delay until it is due.
	Reschedule(ctx context.Context, postID, userID int64, newTime string) (time.Duration, error)

	// Transition moves a post along one edge of the status graph.
	Transition(ctx context.Context, postID int64, target string) error
}

type lifecycleService struct {
	pr    repository.PostRepository
	views ViewInvalidator
}

func NewLifecycleService(pr repository.PostRepository, views ViewInvalidator) LifecycleService {
	return &lifecycleService{pr: pr, views: views}
}

// scheduleTimeLayouts are accepted reschedule formats: full RFC 3339 plus
// the minute-precision shape browser datetime inputs submit.
var scheduleTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04"}

func parseScheduleTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range scheduleTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (s *lifecycleService) Reschedule(ctx context.Context, postID, userID int64, newTime string) (time.Duration, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return 0, err
	}
	if post == nil || post.UserID != userID {
		return 0, ErrNotFound
	}

	if !reschedulable[post.Status] {
		slog.Info("reschedule rejected", "post_id", postID, "status", post.Status)
		return 0, fmt.Errorf("%w: post is %s", ErrInvalidState, post.Status)
	}

	scheduledAt, err := parseScheduleTime(newTime)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable scheduled time: %v", ErrInvalidInput, err)
	}

	if err := s.pr.SetScheduledAt(ctx, postID, scheduledAt); err != nil {
		return 0, err
	}

	if s.views != nil {
		if err := s.views.InvalidatePostViews(ctx, userID); err != nil {
			slog.Info("view invalidation failed", "user_id", userID, "error", err.Error())
		}
	}

	delay := time.Until(scheduledAt)
	if delay < 0 {
		delay = 0
	}
	return delay, nil
}

func (s *lifecycleService) Transition(ctx context.Context, postID int64, target string) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}

	if !CanTransition(post.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, post.Status, target)
	}

	// The guarded update closes the race between the check above and a
	// concurrent transition on the same post.
	ok, err := s.pr.UpdateStatusIf(ctx, postID, post.Status, target)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: post moved concurrently from %s", ErrIllegalTransition, post.Status)
	}
	return nil
}
