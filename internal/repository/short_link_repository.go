package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
)

type ShortLinkRepository interface {
	Create(ctx context.Context, link *models.ShortLink) (int64, error)
	GetByCode(ctx context.Context, code string) (*models.ShortLink, error)
	IncrementClicks(ctx context.Context, id int64) error
}

type shortLinkRepository struct {
	db *sql.DB
}

func NewShortLinkRepository(db *sql.DB) ShortLinkRepository {
	return &shortLinkRepository{db: db}
}

func (r *shortLinkRepository) Create(ctx context.Context, link *models.ShortLink) (int64, error) {
	query := `
		INSERT INTO short_links (user_id, short_code, original_url, utm_source, utm_medium, utm_campaign)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, link.UserID, link.ShortCode, link.OriginalURL,
		link.UTMSource, link.UTMMedium, link.UTMCampaign).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *shortLinkRepository) GetByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	query := `SELECT id, user_id, short_code, original_url, utm_source, utm_medium, utm_campaign, clicks, created_at
		FROM short_links WHERE short_code = $1`
	row := r.db.QueryRowContext(ctx, query, code)

	var link models.ShortLink
	err := row.Scan(&link.ID, &link.UserID, &link.ShortCode, &link.OriginalURL,
		&link.UTMSource, &link.UTMMedium, &link.UTMCampaign, &link.Clicks, &link.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &link, nil
}

// IncrementClicks bumps the counter in a single statement so concurrent
// resolutions never lose a click.
func (r *shortLinkRepository) IncrementClicks(ctx context.Context, id int64) error {
	query := `UPDATE short_links SET clicks = clicks + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
