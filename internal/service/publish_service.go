package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
	"github.com/renefichtmueller/ctxpost-sub002/internal/platform"
	"github.com/renefichtmueller/ctxpost-sub002/internal/ratelimit"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
)

const (
	// publishConcurrency bounds the in-flight platform calls per fan-out.
	publishConcurrency = 10

	// publishTimeout bounds each individual platform call.
	publishTimeout = 30 * time.Second
)

// publishRateConfig is the admission budget per social account. Keyed by
// (account id, "publish") so one noisy account cannot exhaust another's
// platform credentials.
var publishRateConfig = ratelimit.Config{Limit: 30, Window: time.Minute}

// PublishService expands one due post into per-target delivery attempts and
// aggregates the outcome. Policy: the post counts as PUBLISHED when at least
// one target succeeded; only a full wipe-out marks it FAILED. Target-level
// failures stay visible on their rows.
type PublishService interface {
	Publish(ctx context.Context, postID int64) error
}

type publishService struct {
	pr         repository.PostRepository
	tr         repository.PostTargetRepository
	ar         repository.SocialAccountRepository
	au         repository.AuditRepository
	connectors *platform.Registry
	limiter    ratelimit.Limiter
	views      ViewInvalidator

	timeout time.Duration
	now     func() time.Time
}

func NewPublishService(
	pr repository.PostRepository,
	tr repository.PostTargetRepository,
	ar repository.SocialAccountRepository,
	au repository.AuditRepository,
	connectors *platform.Registry,
	limiter ratelimit.Limiter,
	views ViewInvalidator) PublishService {
	return &publishService{
		pr:         pr,
		tr:         tr,
		ar:         ar,
		au:         au,
		connectors: connectors,
		limiter:    limiter,
		views:      views,
		timeout:    publishTimeout,
		now:        time.Now,
	}
}

// targetOutcome is the per-target result gathered during fan-out.
type targetOutcome struct {
	targetID    int64
	published   bool
	publishedAt time.Time
	reason      string
}

func (s *publishService) Publish(ctx context.Context, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}

	switch post.Status {
	case models.PostStatusScheduled:
		// Claim the post. Losing the guarded update means another worker
		// is already fanning out this post.
		ok, err := s.pr.UpdateStatusIf(ctx, postID, models.PostStatusScheduled, models.PostStatusPublishing)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	case models.PostStatusPublishing:
		// Reclaim of a run that died mid-flight. Target-level guards make
		// re-processing already-settled targets a no-op.
	default:
		return nil
	}

	targets, err := s.tr.ListByPostID(ctx, postID)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		if _, err := s.pr.UpdateStatusIf(ctx, postID, models.PostStatusPublishing, models.PostStatusFailed); err != nil {
			slog.Info(err.Error())
		}
		return fmt.Errorf("%w: post %d has no targets", ErrInvalidInput, postID)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	semaphore := make(chan struct{}, publishConcurrency)
	outcomes := make([]targetOutcome, 0, len(targets))

	for _, target := range targets {
		if target.Status == models.TargetStatusPublished || target.Status == models.TargetStatusFailed {
			// Settled in a previous run.
			mu.Lock()
			outcomes = append(outcomes, targetOutcome{
				targetID:    target.ID,
				published:   target.Status == models.TargetStatusPublished,
				publishedAt: target.PublishedAt.Time,
				reason:      target.FailureReason,
			})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go func(target *models.PostTarget) {
			defer wg.Done()
			defer func() { <-semaphore }()

			outcome := s.deliver(ctx, post, target)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
		}(target)
	}

	wg.Wait()

	return s.aggregate(ctx, post, outcomes)
}

// deliver runs one target's delivery attempt end to end: credential and
// expiry screening, the admission gate, the timed connector call, and the
// per-target row update.
func (s *publishService) deliver(ctx context.Context, post *models.Post, target *models.PostTarget) targetOutcome {
	account, err := s.ar.GetByID(ctx, target.SocialAccountID)
	if err != nil || account == nil || !account.IsActive {
		return s.fail(ctx, post, target, models.FailureCredentialUnavailable, ErrCredentialUnavailable)
	}
	if account.AccessToken == "" || (account.TokenExpiresAt.Valid && account.TokenExpiresAt.Time.Before(s.now())) {
		return s.fail(ctx, post, target, models.FailureCredentialUnavailable, ErrCredentialUnavailable)
	}

	key := fmt.Sprintf("%d:publish", account.ID)
	if res := s.limiter.Check(key, publishRateConfig); !res.Allowed {
		// Not retried within this run; a later scheduling cycle picks the
		// target up again.
		return s.fail(ctx, post, target, models.FailureRateLimited, ErrRateLimited)
	}

	connector, err := s.connectors.Lookup(account.Platform)
	if err != nil {
		return s.fail(ctx, post, target, models.FailureConnector, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	platformPostID, err := connector.Publish(callCtx, account, post)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return s.fail(ctx, post, target, models.FailureTimeout, ErrTimeout)
		}
		return s.fail(ctx, post, target, models.FailureConnector, fmt.Errorf("%w: %v", ErrConnectorFailure, err))
	}

	publishedAt := s.now()
	if _, err := s.tr.MarkPublished(ctx, target.ID, platformPostID, publishedAt); err != nil {
		slog.Info(err.Error())
	}
	s.audit(ctx, post, target, "target.published", platformPostID)

	return targetOutcome{targetID: target.ID, published: true, publishedAt: publishedAt}
}

func (s *publishService) fail(ctx context.Context, post *models.Post, target *models.PostTarget, reason string, cause error) targetOutcome {
	slog.Info("target delivery failed", "post_id", post.ID, "target_id", target.ID, "reason", reason, "error", cause.Error())
	if _, err := s.tr.MarkFailed(ctx, target.ID, reason); err != nil {
		slog.Info(err.Error())
	}
	s.audit(ctx, post, target, "target.failed", cause.Error())
	return targetOutcome{targetID: target.ID, reason: reason}
}

func (s *publishService) audit(ctx context.Context, post *models.Post, target *models.PostTarget, event, details string) {
	entry := models.AuditEvent{
		UserID:   post.UserID,
		PostID:   sql.NullInt64{Int64: post.ID, Valid: true},
		TargetID: sql.NullInt64{Int64: target.ID, Valid: true},
		Event:    event,
		Details:  details,
	}
	if _, err := s.au.Create(ctx, &entry); err != nil {
		slog.Info(err.Error())
	}
}

func (s *publishService) aggregate(ctx context.Context, post *models.Post, outcomes []targetOutcome) error {
	var firstPublishedAt time.Time
	anySuccess := false
	for _, o := range outcomes {
		if !o.published {
			continue
		}
		if !anySuccess || o.publishedAt.Before(firstPublishedAt) {
			firstPublishedAt = o.publishedAt
		}
		anySuccess = true
	}

	if anySuccess {
		if _, err := s.pr.SetPublished(ctx, post.ID, firstPublishedAt); err != nil {
			return err
		}
	} else {
		if _, err := s.pr.UpdateStatusIf(ctx, post.ID, models.PostStatusPublishing, models.PostStatusFailed); err != nil {
			return err
		}
	}

	if s.views != nil {
		if err := s.views.InvalidatePostViews(ctx, post.UserID); err != nil {
			slog.Info(err.Error())
		}
	}
	return nil
}
