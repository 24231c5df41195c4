package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
)

type PostTargetRepository interface {
	Create(ctx context.Context, tx *sql.Tx, target *models.PostTarget) (int64, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostTarget, error)
	MarkPublished(ctx context.Context, id int64, platformPostID string, publishedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id int64, reason string) (bool, error)
}

type postTargetRepository struct {
	db *sql.DB
}

func NewPostTargetRepository(db *sql.DB) PostTargetRepository {
	return &postTargetRepository{db: db}
}

func (r *postTargetRepository) Create(ctx context.Context, tx *sql.Tx, target *models.PostTarget) (int64, error) {
	query := `
		INSERT INTO post_targets (post_id, social_account_id, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, target.PostID, target.SocialAccountID, target.Status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, target.PostID, target.SocialAccountID, target.Status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postTargetRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostTarget, error) {
	query := `SELECT id, post_id, social_account_id, status, platform_post_id, published_at, failure_reason, created_at, updated_at
		FROM post_targets WHERE post_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var targets []*models.PostTarget
	for rows.Next() {
		var t models.PostTarget
		err := rows.Scan(&t.ID, &t.PostID, &t.SocialAccountID, &t.Status,
			&t.PlatformPostID, &t.PublishedAt, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		targets = append(targets, &t)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return targets, nil
}

// MarkPublished records a successful delivery. The update is guarded so a
// target cannot leave PUBLISHED or terminal FAILED once it got there.
func (r *postTargetRepository) MarkPublished(ctx context.Context, id int64, platformPostID string, publishedAt time.Time) (bool, error) {
	query := `
		UPDATE post_targets
		SET status = $1, platform_post_id = $2, published_at = $3, failure_reason = '', updated_at = $4
		WHERE id = $5 AND status IN ($6, $7)
	`
	result, err := r.db.ExecContext(ctx, query, models.TargetStatusPublished, platformPostID,
		publishedAt, time.Now(), id, models.TargetStatusScheduled, models.TargetStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected > 0, nil
}

func (r *postTargetRepository) MarkFailed(ctx context.Context, id int64, reason string) (bool, error) {
	query := `
		UPDATE post_targets
		SET status = $1, failure_reason = $2, updated_at = $3
		WHERE id = $4 AND status IN ($5, $6)
	`
	result, err := r.db.ExecContext(ctx, query, models.TargetStatusFailed, reason,
		time.Now(), id, models.TargetStatusScheduled, models.TargetStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected > 0, nil
}
