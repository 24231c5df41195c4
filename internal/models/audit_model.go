package models

import (
	"database/sql"
	"time"
)

type AuditEvent struct {
	ID        int64         `db:"id" json:"id"`
	UserID    int64         `db:"user_id" json:"user_id"`
	PostID    sql.NullInt64 `db:"post_id" json:"post_id"`
	TargetID  sql.NullInt64 `db:"target_id" json:"target_id"`
	Event     string        `db:"event" json:"event"`
	Details   string        `db:"details" json:"details"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}
