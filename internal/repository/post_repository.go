package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error)
	ListRecyclable(ctx context.Context, cutoff time.Time, limit int) ([]*models.Post, error)
	UpdateStatusIf(ctx context.Context, postID int64, from, to string) (bool, error)
	SetEvergreen(ctx context.Context, postID int64, evergreen bool) (bool, error)
	SetScheduledAt(ctx context.Context, postID int64, scheduledAt time.Time) error
	SetPublished(ctx context.Context, postID int64, publishedAt time.Time) (bool, error)
	SetLastRecycledAt(ctx context.Context, postID int64, recycledAt time.Time) error
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, content_type, content, title, category_id, status, scheduled_at, published_at, is_evergreen, last_recycled_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.UserID, &post.ContentType, &post.Content,
		&post.Title, &post.CategoryID, &post.Status, &post.ScheduledAt,
		&post.PublishedAt, &post.IsEvergreen, &post.LastRecycledAt,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, content_type, content, title, category_id, status, scheduled_at, is_evergreen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.UserID, post.ContentType, post.Content,
			post.Title, post.CategoryID, post.Status, post.ScheduledAt, post.IsEvergreen).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.UserID, post.ContentType, post.Content,
			post.Title, post.CategoryID, post.Status, post.ScheduledAt, post.IsEvergreen).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

// ListDue returns SCHEDULED posts whose scheduled time has passed, oldest
// first, so older backlog is worked off before fresher posts.
func (r *postRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts
		WHERE status = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

// ListRecyclable returns evergreen published posts eligible for recycling:
// published on or before cutoff and not recycled since cutoff. Never-recycled
// posts sort first.
func (r *postRepository) ListRecyclable(ctx context.Context, cutoff time.Time, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts
		WHERE is_evergreen = TRUE
		  AND status = $1
		  AND published_at IS NOT NULL AND published_at <= $2
		  AND (last_recycled_at IS NULL OR last_recycled_at <= $2)
		ORDER BY last_recycled_at ASC NULLS FIRST
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusPublished, cutoff, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

// UpdateStatusIf applies from -> to only when the row still holds the
// expected status. Returns false when another writer got there first.
func (r *postRepository) UpdateStatusIf(ctx context.Context, postID int64, from, to string) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), postID, from)
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

// SetEvergreen flips the evergreen flag, guarded on PUBLISHED status: only
// a post that has completed a publish run can enter the recycling pool.
func (r *postRepository) SetEvergreen(ctx context.Context, postID int64, evergreen bool) (bool, error) {
	query := `
		UPDATE posts
		SET is_evergreen = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, evergreen, time.Now(), postID, models.PostStatusPublished)
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

func (r *postRepository) SetScheduledAt(ctx context.Context, postID int64, scheduledAt time.Time) error {
	query := `
		UPDATE posts
		SET scheduled_at = $1, updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, scheduledAt, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// SetPublished moves a PUBLISHING post to PUBLISHED and stamps the post-level
// publish time. Guarded on the current status so a concurrent fail/publish
// race cannot overwrite a terminal state.
func (r *postRepository) SetPublished(ctx context.Context, postID int64, publishedAt time.Time) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1, published_at = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, publishedAt, time.Now(), postID, models.PostStatusPublishing)
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

func (r *postRepository) SetLastRecycledAt(ctx context.Context, postID int64, recycledAt time.Time) error {
	query := `
		UPDATE posts
		SET last_recycled_at = $1, updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, recycledAt, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func collectPosts(rows *sql.Rows) ([]*models.Post, error) {
	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}
