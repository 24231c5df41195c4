package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"draft to review", models.PostStatusDraft, models.PostStatusPendingReview, true},
		{"draft straight to scheduled", models.PostStatusDraft, models.PostStatusScheduled, true},
		{"review to scheduled", models.PostStatusPendingReview, models.PostStatusScheduled, true},
		{"scheduled to publishing", models.PostStatusScheduled, models.PostStatusPublishing, true},
		{"publishing to published", models.PostStatusPublishing, models.PostStatusPublished, true},
		{"publishing to failed", models.PostStatusPublishing, models.PostStatusFailed, true},
		{"draft cannot publish directly", models.PostStatusDraft, models.PostStatusPublishing, false},
		{"published is terminal", models.PostStatusPublished, models.PostStatusScheduled, false},
		{"failed is terminal", models.PostStatusFailed, models.PostStatusScheduled, false},
		{"no backwards edge", models.PostStatusScheduled, models.PostStatusDraft, false},
		{"no self edge", models.PostStatusDraft, models.PostStatusDraft, false},
		{"unknown status", "archived", models.PostStatusScheduled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("legal edge flips the status", func(t *testing.T) {
		pr := newFakePostRepo()
		post := pr.add(&models.Post{UserID: 1, Status: models.PostStatusDraft})

		svc := NewLifecycleService(pr, nil)
		if err := svc.Transition(ctx, post.ID, models.PostStatusPendingReview); err != nil {
			t.Fatalf("Transition() error = %v", err)
		}

		got, _ := pr.GetByID(ctx, post.ID)
		if got.Status != models.PostStatusPendingReview {
			t.Errorf("status = %q, want %q", got.Status, models.PostStatusPendingReview)
		}
	})

	t.Run("illegal edge is rejected", func(t *testing.T) {
		pr := newFakePostRepo()
		post := pr.add(&models.Post{UserID: 1, Status: models.PostStatusPublished})

		svc := NewLifecycleService(pr, nil)
		err := svc.Transition(ctx, post.ID, models.PostStatusScheduled)
		if !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("Transition() error = %v, want ErrIllegalTransition", err)
		}
	})

	t.Run("missing post", func(t *testing.T) {
		svc := NewLifecycleService(newFakePostRepo(), nil)
		if err := svc.Transition(ctx, 42, models.PostStatusScheduled); !errors.Is(err, ErrNotFound) {
			t.Errorf("Transition() error = %v, want ErrNotFound", err)
		}
	})
}

func TestReschedule(t *testing.T) {
	ctx := context.Background()
	future := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)

	t.Run("scheduled post gets the new time", func(t *testing.T) {
		pr := newFakePostRepo()
		views := &fakeViews{}
		post := pr.add(&models.Post{
			UserID:      7,
			Status:      models.PostStatusScheduled,
			ScheduledAt: sql.NullTime{Time: time.Now().Add(time.Hour), Valid: true},
		})

		svc := NewLifecycleService(pr, views)
		delay, err := svc.Reschedule(ctx, post.ID, 7, future)
		if err != nil {
			t.Fatalf("Reschedule() error = %v", err)
		}
		if delay <= time.Hour {
			t.Errorf("delay = %v, want more than an hour out", delay)
		}

		got, _ := pr.GetByID(ctx, post.ID)
		want, _ := time.Parse(time.RFC3339, future)
		if !got.ScheduledAt.Valid || !got.ScheduledAt.Time.Equal(want) {
			t.Errorf("scheduled_at = %v, want %v", got.ScheduledAt, want)
		}
		if len(views.calls) != 1 || views.calls[0] != 7 {
			t.Errorf("view invalidations = %v, want [7]", views.calls)
		}
	})

	t.Run("minute precision form input is accepted", func(t *testing.T) {
		pr := newFakePostRepo()
		post := pr.add(&models.Post{UserID: 7, Status: models.PostStatusDraft})

		svc := NewLifecycleService(pr, nil)
		if _, err := svc.Reschedule(ctx, post.ID, 7, "2027-03-15T14:30"); err != nil {
			t.Fatalf("Reschedule() error = %v", err)
		}
	})

	t.Run("past time clamps delay to zero", func(t *testing.T) {
		pr := newFakePostRepo()
		post := pr.add(&models.Post{UserID: 7, Status: models.PostStatusScheduled})

		svc := NewLifecycleService(pr, nil)
		delay, err := svc.Reschedule(ctx, post.ID, 7, "2020-01-01T00:00:00Z")
		if err != nil {
			t.Fatalf("Reschedule() error = %v", err)
		}
		if delay != 0 {
			t.Errorf("delay = %v, want 0", delay)
		}
	})

	t.Run("published post cannot be rescheduled", func(t *testing.T) {
		pr := newFakePostRepo()
		post := pr.add(&models.Post{UserID: 7, Status: models.PostStatusPublished})

		svc := NewLifecycleService(pr, nil)
		_, err := svc.Reschedule(ctx, post.ID, 7, future)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("Reschedule() error = %v, want ErrInvalidState", err)
		}
		if pr.setScheduledCalls != 0 {
			t.Errorf("SetScheduledAt called %d times, want 0", pr.setScheduledCalls)
		}
	})

	t.Run("unparseable time", func(t *testing.T) {
		pr := newFakePostRepo()
		post := pr.add(&models.Post{UserID: 7, Status: models.PostStatusDraft})

		svc := NewLifecycleService(pr, nil)
		_, err := svc.Reschedule(ctx, post.ID, 7, "next tuesday")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Reschedule() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("someone else's post reads as missing", func(t *testing.T) {
		pr := newFakePostRepo()
		post := pr.add(&models.Post{UserID: 7, Status: models.PostStatusDraft})

		svc := NewLifecycleService(pr, nil)
		_, err := svc.Reschedule(ctx, post.ID, 8, future)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Reschedule() error = %v, want ErrNotFound", err)
		}
	})
}
