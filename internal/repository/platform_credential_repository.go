package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
)

type PlatformCredentialRepository interface {
	GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.PlatformCredential, error)
	Upsert(ctx context.Context, cred *models.PlatformCredential) error
}

type platformCredentialRepository struct {
	db *sql.DB
}

func NewPlatformCredentialRepository(db *sql.DB) PlatformCredentialRepository {
	return &platformCredentialRepository{db: db}
}

func (r *platformCredentialRepository) GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.PlatformCredential, error) {
	query := `SELECT id, user_id, platform, client_id, client_secret, created_at, updated_at
		FROM platform_credentials WHERE user_id = $1 AND platform = $2`
	row := r.db.QueryRowContext(ctx, query, userID, platform)

	var cred models.PlatformCredential
	err := row.Scan(&cred.ID, &cred.UserID, &cred.Platform, &cred.ClientID,
		&cred.ClientSecret, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &cred, nil
}

func (r *platformCredentialRepository) Upsert(ctx context.Context, cred *models.PlatformCredential) error {
	query := `
		INSERT INTO platform_credentials (user_id, platform, client_id, client_secret)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, platform) DO UPDATE
		SET client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, cred.UserID, cred.Platform, cred.ClientID, cred.ClientSecret)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
