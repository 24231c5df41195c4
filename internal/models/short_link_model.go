package models

import (
	"database/sql"
	"time"
)

// ShortLink is a redirect record. The short code is immutable once created
// and the click counter only ever increases.
type ShortLink struct {
	ID          int64          `db:"id" json:"id"`
	UserID      int64          `db:"user_id" json:"user_id"`
	ShortCode   string         `db:"short_code" json:"short_code"`
	OriginalURL string         `db:"original_url" json:"original_url"`
	UTMSource   sql.NullString `db:"utm_source" json:"utm_source"`
	UTMMedium   sql.NullString `db:"utm_medium" json:"utm_medium"`
	UTMCampaign sql.NullString `db:"utm_campaign" json:"utm_campaign"`
	Clicks      int64          `db:"clicks" json:"clicks"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
