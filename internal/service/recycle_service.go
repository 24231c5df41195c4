package service

import (
	"context"
	"database/sql"
	"log/slog"
	"math/rand"
	"time"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
)

const (
	// recycleEligibilityAge is how long a post must sit published (and
	// unrecycled) before it is picked up again.
	recycleEligibilityAge = 7 * 24 * time.Hour

	// recycleBatchCap bounds copies per run; invocation frequency controls
	// overall throughput.
	recycleBatchCap = 3

	recycleWindowStartHour = 9
	recycleWindowEndHour   = 17
)

// Jitter picks the intraday slot for a recycled copy so copies do not
// cluster at the same instant. Pluggable so tests can pin it.
type Jitter func(hourStart, hourEnd int) (hour, minute int)

func randomJitter(hourStart, hourEnd int) (int, int) {
	return hourStart + rand.Intn(hourEnd-hourStart+1), rand.Intn(60)
}

// RecycleService clones eligible evergreen posts into fresh scheduled posts.
// A copy is never itself evergreen, so recycling cannot recurse.
type RecycleService interface {
	// Run performs one bounded recycling pass and returns how many posts
	// were recycled.
	Run(ctx context.Context) (int, error)
}

type recycleService struct {
	db     *sql.DB
	pr     repository.PostRepository
	tr     repository.PostTargetRepository
	pm     repository.PostMediaRepository
	au     repository.AuditRepository
	jitter Jitter
	now    func() time.Time
}

func NewRecycleService(
	db *sql.DB,
	pr repository.PostRepository,
	tr repository.PostTargetRepository,
	pm repository.PostMediaRepository,
	au repository.AuditRepository) RecycleService {
	return &recycleService{
		db:     db,
		pr:     pr,
		tr:     tr,
		pm:     pm,
		au:     au,
		jitter: randomJitter,
		now:    time.Now,
	}
}

func (s *recycleService) Run(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-recycleEligibilityAge)

	candidates, err := s.pr.ListRecyclable(ctx, cutoff, recycleBatchCap)
	if err != nil {
		return 0, err
	}

	recycled := 0
	for _, post := range candidates {
		// Each post is an independent unit of work; one failure must not
		// starve the rest of the batch.
		if err := s.recycleOne(ctx, post, now); err != nil {
			slog.Info("recycling failed", "post_id", post.ID, "error", err.Error())
			continue
		}
		recycled++
	}

	return recycled, nil
}

func (s *recycleService) recycleOne(ctx context.Context, original *models.Post, now time.Time) error {
	targets, err := s.tr.ListByPostID(ctx, original.ID)
	if err != nil {
		return err
	}

	media, err := s.pm.ListByPostID(ctx, original.ID)
	if err != nil {
		return err
	}

	hour, minute := s.jitter(recycleWindowStartHour, recycleWindowEndHour)
	nextDay := now.Add(24 * time.Hour)
	scheduledAt := time.Date(nextDay.Year(), nextDay.Month(), nextDay.Day(), hour, minute, 0, 0, now.Location())

	var tx *sql.Tx
	if s.db != nil {
		tx, err = s.db.BeginTx(ctx, &sql.TxOptions{})
		if err != nil {
			return err
		}
		defer tx.Rollback()
	}

	copyPost := models.Post{
		UserID:      original.UserID,
		ContentType: original.ContentType,
		Content:     original.Content,
		Title:       original.Title,
		CategoryID:  original.CategoryID,
		Status:      models.PostStatusScheduled,
		ScheduledAt: sql.NullTime{Time: scheduledAt, Valid: true},
		IsEvergreen: false,
	}

	copyID, err := s.pr.Create(ctx, tx, &copyPost)
	if err != nil {
		return err
	}

	for _, target := range targets {
		copyTarget := models.PostTarget{
			PostID:          copyID,
			SocialAccountID: target.SocialAccountID,
			Status:          models.TargetStatusScheduled,
		}
		if _, err := s.tr.Create(ctx, tx, &copyTarget); err != nil {
			return err
		}
	}

	// The copy shares the original's media assets; only the linking rows
	// are duplicated.
	for _, pm := range media {
		copyMedia := models.PostMedia{
			PostID:       copyID,
			AssetID:      pm.AssetID,
			DisplayOrder: pm.DisplayOrder,
		}
		if err := s.pm.Create(ctx, tx, &copyMedia); err != nil {
			return err
		}
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	// Stamping the original outside the copy's transaction is deliberate:
	// if this update fails the post is re-eligible next run, and the copy
	// already exists. The eligibility window keeps that from spiraling.
	if err := s.pr.SetLastRecycledAt(ctx, original.ID, now); err != nil {
		slog.Info("last_recycled_at update failed", "post_id", original.ID, "error", err.Error())
	}

	entry := models.AuditEvent{
		UserID:  original.UserID,
		PostID:  sql.NullInt64{Int64: original.ID, Valid: true},
		Event:   "post.recycled",
		Details: scheduledAt.Format(time.RFC3339),
	}
	if _, err := s.au.Create(ctx, &entry); err != nil {
		slog.Info(err.Error())
	}

	return nil
}
