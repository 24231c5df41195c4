package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
)

type AuditRepository interface {
	Create(ctx context.Context, event *models.AuditEvent) (int64, error)
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, event *models.AuditEvent) (int64, error) {
	query := `
		INSERT INTO audit_events (user_id, post_id, target_id, event, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, event.UserID, event.PostID, event.TargetID,
		event.Event, event.Details).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}
